package tokenizer

import (
	"fmt"
	"sync"

	"github.com/pkoukk/tiktoken-go"
	tiktoken_loader "github.com/pkoukk/tiktoken-go-loader"
)

const DefaultEncoding = "cl100k_base"

// Counter reports how many model tokens a text consumes.
type Counter interface {
	Count(text string) int
}

var loaderOnce sync.Once

type bpeCounter struct {
	enc *tiktoken.Tiktoken
}

// New returns a Counter using the BPE of the given model. Unknown models fall
// back to cl100k_base. Ranks are loaded from the embedded offline tables.
func New(model string) (Counter, error) {
	loaderOnce.Do(func() {
		tiktoken.SetBpeLoader(tiktoken_loader.NewOfflineLoader())
	})

	enc, err := tiktoken.EncodingForModel(model)
	if err != nil {
		enc, err = tiktoken.GetEncoding(DefaultEncoding)
		if err != nil {
			return nil, fmt.Errorf("failed to load encoding %s: %w", DefaultEncoding, err)
		}
	}
	return &bpeCounter{enc: enc}, nil
}

func (c *bpeCounter) Count(text string) int {
	if text == "" {
		return 0
	}
	return len(c.enc.Encode(text, nil, nil))
}
