package generation

// Retrieval (knowledge-base) request wire format for the
// retrieve-and-generate API.

// sourceURIMetadataKey is the metadata field the document-scope filter
// matches against.
const sourceURIMetadataKey = "x-amz-bedrock-kb-source-uri"

// defaultRetrievalResults is the fixed retrieval top-k.
const defaultRetrievalResults = 3

// RetrievalRequest is the retrieve-and-generate request payload.
type RetrievalRequest struct {
	Input         retrievalInput `json:"input"`
	Configuration ragConfig      `json:"retrieveAndGenerateConfiguration"`
}

type retrievalInput struct {
	Text string `json:"text"`
}

type ragConfig struct {
	Type          string   `json:"type"`
	KnowledgeBase kbConfig `json:"knowledgeBaseConfiguration"`
}

type kbConfig struct {
	KnowledgeBaseID string          `json:"knowledgeBaseId"`
	ModelARN        string          `json:"modelArn"`
	Retrieval       retrievalConfig `json:"retrievalConfiguration"`
}

type retrievalConfig struct {
	VectorSearch vectorSearchConfig `json:"vectorSearchConfiguration"`
}

type vectorSearchConfig struct {
	NumberOfResults int             `json:"numberOfResults"`
	Filter          *metadataFilter `json:"filter,omitempty"`
}

type metadataFilter struct {
	StringContains stringContainsFilter `json:"stringContains"`
}

type stringContainsFilter struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// buildRetrievalRequest assembles the retrieve-and-generate payload.
// When documentID is non-empty the vector search is narrowed to sources
// whose URI contains it.
func buildRetrievalRequest(prompt, knowledgeBaseID, modelARN, documentID string) RetrievalRequest {
	vectorSearch := vectorSearchConfig{NumberOfResults: defaultRetrievalResults}
	if documentID != "" {
		vectorSearch.Filter = &metadataFilter{
			StringContains: stringContainsFilter{Key: sourceURIMetadataKey, Value: documentID},
		}
	}

	return RetrievalRequest{
		Input: retrievalInput{Text: prompt},
		Configuration: ragConfig{
			Type: "KNOWLEDGE_BASE",
			KnowledgeBase: kbConfig{
				KnowledgeBaseID: knowledgeBaseID,
				ModelARN:        modelARN,
				Retrieval:       retrievalConfig{VectorSearch: vectorSearch},
			},
		},
	}
}
