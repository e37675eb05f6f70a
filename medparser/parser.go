package medparser

import (
	"context"
	"sync"

	"github.com/giygas/medications-normalizer/interfaces"
	"github.com/giygas/medications-normalizer/medparser/entities"
	"golang.org/x/text/unicode/norm"
)

// Compile-time check to ensure Parser implements MedicationParser
var _ interfaces.MedicationParser = (*Parser)(nil)

// Parser turns raw medication texts into ParsedMedication values.
// It holds no mutable state and may be shared between goroutines.
type Parser struct {
	vocab *Vocabulary
}

// NewParser creates a parser over vocab. A nil vocab selects DefaultVocabulary.
func NewParser(vocab *Vocabulary) *Parser {
	if vocab == nil {
		vocab = DefaultVocabulary()
	}
	return &Parser{vocab: vocab}
}

// Vocabulary returns the tables the parser reads from.
func (p *Parser) Vocabulary() *Vocabulary {
	return p.vocab
}

// Parse extracts the ingredient and dosage from one text.
func (p *Parser) Parse(text string) entities.ParsedMedication {
	return p.Analyze(text).Medication
}

// Analyze is Parse plus the topical and table-match flags.
func (p *Parser) Analyze(text string) entities.ParseOutcome {
	text = norm.NFC.String(text)

	var outcome entities.ParseOutcome

	if name, matched, ok := p.vocab.canonicalize(text); ok {
		outcome.Medication.ActiveIngredient = &name
		outcome.IngredientMatched = matched
	}

	outcome.Topical = p.vocab.topical.IsTopical(text)
	if outcome.Topical {
		return outcome
	}

	if amount, unit, ok := matchDosage(text); ok {
		outcome.Medication.DosageAmount = &amount
		outcome.Medication.DosageUnit = &unit
	}

	return outcome
}

// ParseAll parses texts on up to workers goroutines. The result at index i
// always belongs to texts[i]. The only error is ctx being done.
func (p *Parser) ParseAll(ctx context.Context, texts []string, workers int) ([]entities.ParsedMedication, error) {
	outcomes, err := p.AnalyzeAll(ctx, texts, workers)
	if err != nil {
		return nil, err
	}

	medications := make([]entities.ParsedMedication, len(outcomes))
	for i := range outcomes {
		medications[i] = outcomes[i].Medication
	}
	return medications, nil
}

// AnalyzeAll is the ParseOutcome variant of ParseAll.
func (p *Parser) AnalyzeAll(ctx context.Context, texts []string, workers int) ([]entities.ParseOutcome, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	outcomes := make([]entities.ParseOutcome, len(texts))

	workers = max(1, min(workers, len(texts)))
	indexes := make(chan int)

	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indexes {
				outcomes[i] = p.Analyze(texts[i])
			}
		}()
	}

	var err error
feed:
	for i := range texts {
		select {
		case <-ctx.Done():
			err = ctx.Err()
			break feed
		case indexes <- i:
		}
	}
	close(indexes)
	wg.Wait()

	if err != nil {
		return nil, err
	}
	return outcomes, nil
}
