package generation

import (
	"encoding/json"

	"github.com/codevakure/bedrock-api-code/internal/domain/costing"
)

// fragmentSize is the fixed fragment length in characters. Chunking by
// runes keeps multi-byte characters whole; citation spans are expressed
// in the same coordinate space.
const fragmentSize = 100

// Metadata is the aggregate bundle carried only on the terminal fragment.
type Metadata struct {
	PageNumbers []int            `json:"page_numbers"`
	CostMetrics *costing.Metrics `json:"cost_metrics"`
}

// Fragment is one emission unit of the response stream. Fragments are
// produced lazily in strict left-to-right order and never reordered or
// retried once emitted.
type Fragment struct {
	Chunk       string
	IsFinal     bool
	PageNumbers []int // sorted distinct pages overlapping this fragment
	Metadata    *Metadata
	Err         string
}

// MarshalJSON renders the caller-facing NDJSON element shape: a success
// fragment always carries "chunk" (even when empty), an error fragment
// carries "error" and nothing else besides the terminal flag.
func (f Fragment) MarshalJSON() ([]byte, error) {
	out := map[string]any{"is_final": f.IsFinal}
	if f.Err != "" {
		out["error"] = f.Err
	} else {
		out["chunk"] = f.Chunk
	}
	if len(f.PageNumbers) > 0 {
		out["chunk_page_numbers"] = f.PageNumbers
	}
	if f.Metadata != nil {
		out["metadata"] = f.Metadata
	}
	return json.Marshal(out)
}

// errorFragment is the single terminal element emitted on failure.
func errorFragment(msg string) Fragment {
	return Fragment{IsFinal: true, Err: msg}
}

// chunkFragments splits text into ordered fragments of fragmentSize
// characters and attributes overlapping citation pages to each one. The
// terminal fragment carries the metadata bundle. Concatenating all
// fragment texts reproduces the input exactly; empty text still yields
// one terminal fragment.
func chunkFragments(text string, citations []Citation, meta *Metadata) []Fragment {
	runes := []rune(text)
	if len(runes) == 0 {
		return []Fragment{{Chunk: "", IsFinal: true, Metadata: meta}}
	}

	fragments := make([]Fragment, 0, (len(runes)+fragmentSize-1)/fragmentSize)
	for start := 0; start < len(runes); start += fragmentSize {
		end := start + fragmentSize
		if end > len(runes) {
			end = len(runes)
		}

		f := Fragment{
			Chunk:       string(runes[start:end]),
			IsFinal:     end == len(runes),
			PageNumbers: fragmentPages(start, end, citations),
		}
		if f.IsFinal {
			f.Metadata = meta
		}
		fragments = append(fragments, f)
	}
	return fragments
}

// fragmentPages returns the sorted distinct pages of every citation
// whose span overlaps the half-open fragment range [start, end). A span
// that merely touches the boundary does not overlap.
func fragmentPages(start, end int, citations []Citation) []int {
	var pageSet map[int]bool
	for _, c := range citations {
		if end <= c.Span.Start || start >= c.Span.End {
			continue
		}
		if pageSet == nil {
			pageSet = map[int]bool{}
		}
		for _, p := range c.Pages {
			pageSet[p] = true
		}
	}
	if pageSet == nil {
		return nil
	}
	return sortedPages(pageSet)
}
