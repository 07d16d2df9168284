package generation

import (
	"fmt"
	"log"
	"sort"
	"strings"

	"github.com/codevakure/bedrock-api-code/internal/domain/model"
)

// extractGeneratedText reads the canonical answer text out of a provider
// response body. Every format stores the text in a different location;
// a missing location is a response-extraction failure, not an empty
// answer.
func extractGeneratedText(body map[string]any, cfg model.Config) (string, error) {
	if body == nil {
		return "", fmt.Errorf("%w: empty response body", ErrResponseExtract)
	}

	switch cfg.Provider {
	case model.ProviderAnthropic:
		blocks, ok := body["content"].([]any)
		if !ok || len(blocks) == 0 {
			return "", fmt.Errorf("%w: anthropic response has no content blocks", ErrResponseExtract)
		}
		block, ok := blocks[0].(map[string]any)
		if !ok {
			return "", fmt.Errorf("%w: anthropic content block is not an object", ErrResponseExtract)
		}
		text, _ := block["text"].(string)
		return text, nil

	case model.ProviderMeta:
		text, _ := body["generation"].(string)
		return text, nil

	case model.ProviderCohere:
		text, _ := body["text"].(string)
		return text, nil

	case model.ProviderMistral:
		outputs, ok := body["outputs"].([]any)
		if !ok || len(outputs) == 0 {
			return "", nil
		}
		output, ok := outputs[0].(map[string]any)
		if !ok {
			return "", nil
		}
		text, _ := output["text"].(string)
		return strings.TrimSpace(text), nil

	case model.ProviderAmazon:
		return extractAmazonText(body, cfg)

	default:
		// Best-effort probe for unknown providers.
		text, _ := body["completion"].(string)
		return text, nil
	}
}

// extractAmazonText mirrors the request-side family dispatch: Nova nests
// the answer under output.message.content, Titan under results.
func extractAmazonText(body map[string]any, cfg model.Config) (string, error) {
	if isNovaFamily(cfg.ModelID) {
		output, ok := body["output"].(map[string]any)
		if !ok {
			return "", fmt.Errorf("%w: nova response has no output object", ErrResponseExtract)
		}
		message, _ := output["message"].(map[string]any)
		content, _ := message["content"].([]any)
		if len(content) == 0 {
			return "", nil
		}
		block, ok := content[0].(map[string]any)
		if !ok {
			return "", nil
		}
		text, _ := block["text"].(string)
		return text, nil
	}

	results, ok := body["results"].([]any)
	if !ok || len(results) == 0 {
		return "", nil
	}
	result, ok := results[0].(map[string]any)
	if !ok {
		return "", nil
	}
	text, _ := result["outputText"].(string)
	return text, nil
}

// ─── retrieval (knowledge-base) responses ───────────────────────────────────

// pageNumberMetadataKey is the reference metadata field carrying the
// source page number for a retrieved document chunk.
const pageNumberMetadataKey = "x-amz-bedrock-kb-document-page-number"

// Span is a half-open character range [Start, End) into the generated
// text.
type Span struct {
	Start int
	End   int
}

// Citation attributes one span of the generated text to the source pages
// it was grounded on.
type Citation struct {
	Span  Span
	Pages []int
}

// extractRetrievalText reads the generated answer out of a
// retrieve-and-generate response body.
func extractRetrievalText(body map[string]any) string {
	output, _ := body["output"].(map[string]any)
	text, _ := output["text"].(string)
	return text
}

// extractCitations collects citation records from a retrieval response.
// External API versions disagree on where the citation list lives, so the
// top level is probed first and the retrieveAndGenerateResponse
// sub-envelope second. Malformed citations are logged and skipped — a
// citation that cannot be parsed contributes no page numbers rather than
// aborting the stream.
func extractCitations(body map[string]any) []Citation {
	raw, ok := body["citations"].([]any)
	if !ok {
		if nested, nestedOK := body["retrieveAndGenerateResponse"].(map[string]any); nestedOK {
			raw, _ = nested["citations"].([]any)
		}
	}

	citations := make([]Citation, 0, len(raw))
	for _, entry := range raw {
		citation, ok := parseCitation(entry)
		if !ok {
			log.Printf("generation: skipping malformed citation entry")
			continue
		}
		citations = append(citations, citation)
	}
	return citations
}

// parseCitation reads one citation entry: the generated-response span and
// the page numbers of every retrieved reference. Entries without a
// usable span are rejected; entries without page metadata yield a
// citation with no pages (harmless, maps to nothing).
func parseCitation(entry any) (Citation, bool) {
	obj, ok := entry.(map[string]any)
	if !ok {
		return Citation{}, false
	}

	part, _ := obj["generatedResponsePart"].(map[string]any)
	textPart, _ := part["textResponsePart"].(map[string]any)
	spanObj, ok := textPart["span"].(map[string]any)
	if !ok {
		return Citation{}, false
	}
	start, startOK := jsonInt(spanObj["start"])
	end, endOK := jsonInt(spanObj["end"])
	if !startOK || !endOK || start < 0 || end < start {
		return Citation{}, false
	}

	pageSet := map[int]bool{}
	refs, _ := obj["retrievedReferences"].([]any)
	for _, ref := range refs {
		refObj, refOK := ref.(map[string]any)
		if !refOK {
			continue
		}
		metadata, _ := refObj["metadata"].(map[string]any)
		if page, pageOK := jsonInt(metadata[pageNumberMetadataKey]); pageOK {
			pageSet[page] = true
		}
	}

	return Citation{Span: Span{Start: start, End: end}, Pages: sortedPages(pageSet)}, true
}

// allPages returns the sorted distinct page numbers across every
// citation in the response, including entries whose spans were dropped.
func allPages(body map[string]any, citations []Citation) []int {
	pageSet := map[int]bool{}
	for _, c := range citations {
		for _, p := range c.Pages {
			pageSet[p] = true
		}
	}

	// Span-less citations still contribute to the aggregate page list.
	raw, ok := body["citations"].([]any)
	if !ok {
		if nested, nestedOK := body["retrieveAndGenerateResponse"].(map[string]any); nestedOK {
			raw, _ = nested["citations"].([]any)
		}
	}
	for _, entry := range raw {
		obj, objOK := entry.(map[string]any)
		if !objOK {
			continue
		}
		refs, _ := obj["retrievedReferences"].([]any)
		for _, ref := range refs {
			refObj, refOK := ref.(map[string]any)
			if !refOK {
				continue
			}
			metadata, _ := refObj["metadata"].(map[string]any)
			if page, pageOK := jsonInt(metadata[pageNumberMetadataKey]); pageOK {
				pageSet[page] = true
			}
		}
	}

	return sortedPages(pageSet)
}

func sortedPages(set map[int]bool) []int {
	pages := make([]int, 0, len(set))
	for p := range set {
		pages = append(pages, p)
	}
	sort.Ints(pages)
	return pages
}

// jsonInt accepts the numeric shapes a decoded JSON body can carry.
func jsonInt(v any) (int, bool) {
	switch n := v.(type) {
	case float64:
		return int(n), true
	case int:
		return n, true
	case string:
		// Page metadata is sometimes serialized as a string.
		var parsed int
		if _, err := fmt.Sscanf(n, "%d", &parsed); err == nil {
			return parsed, true
		}
	}
	return 0, false
}
