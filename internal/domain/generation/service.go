package generation

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/codevakure/bedrock-api-code/internal/domain/costing"
	"github.com/codevakure/bedrock-api-code/internal/domain/model"
)

// ModelInvoker is the direct-invoke collaborator: one blocking call, no
// retries at this layer.
type ModelInvoker interface {
	InvokeModel(ctx context.Context, modelARN string, body any) (map[string]any, error)
}

// RetrievalInvoker is the knowledge-base collaborator. The response may
// or may not include citation data depending on the backend version.
type RetrievalInvoker interface {
	RetrieveAndGenerate(ctx context.Context, req RetrievalRequest) (map[string]any, error)
}

// QueryRecorder persists per-request accounting. Recording is
// best-effort: failures are logged, never surfaced to the caller.
type QueryRecorder interface {
	RecordQuery(ctx context.Context, rec QueryRecord) error
}

// QueryRecord is one row of the query audit log.
type QueryRecord struct {
	ClientID    string
	ModelARN    string
	PathKind    string // "retrieval" or "invoke"
	PromptChars int
	DurationMS  int64
	TotalCost   string
	ErrorText   string
}

// Path kind labels for QueryRecord.
const (
	PathRetrieval = "retrieval"
	PathInvoke    = "invoke"
)

// interFragmentDelay is the cooperative yield between fragment
// emissions, letting downstream consumers drain incrementally.
const interFragmentDelay = 100 * time.Millisecond

// Input is the generic generation request. A non-empty KnowledgeBaseID
// selects the retrieval path; its absence selects the direct-invoke
// path. The two are mutually exclusive by construction.
type Input struct {
	Prompt          string
	DocumentID      string
	Settings        *model.Settings
	SystemPrompt    string
	KnowledgeBaseID string
	ModelARN        string

	// ClientID is the authenticated caller, carried through to the
	// query audit log. Empty when the transport has no identity.
	ClientID string
}

// Service is the streaming response engine. Each request is handled
// independently; the service itself holds only read-only wiring.
type Service struct {
	invoker         ModelInvoker
	retriever       RetrievalInvoker
	recorder        QueryRecorder // optional
	defaultModelARN string
	delay           time.Duration
}

// NewService wires the engine to its collaborators. recorder may be nil.
func NewService(invoker ModelInvoker, retriever RetrievalInvoker, recorder QueryRecorder, defaultModelARN string) *Service {
	return &Service{
		invoker:         invoker,
		retriever:       retriever,
		recorder:        recorder,
		defaultModelARN: defaultModelARN,
		delay:           interFragmentDelay,
	}
}

// Generate runs one generation request and returns a finite,
// non-restartable fragment sequence. The channel is closed when the
// stream ends. All failures surface as a single terminal error fragment;
// no partial text is ever emitted once an error occurs. If the consumer
// stops pulling, production stops with the context.
func (s *Service) Generate(ctx context.Context, in Input) <-chan Fragment {
	out := make(chan Fragment)
	go func() {
		defer close(out)
		s.run(ctx, in, out)
	}()
	return out
}

func (s *Service) run(ctx context.Context, in Input, out chan<- Fragment) {
	started := time.Now()
	modelARN := in.ModelARN
	if modelARN == "" {
		modelARN = s.defaultModelARN
	}

	cfg := model.Resolve(modelARN)
	if in.Settings != nil {
		cfg.ApplySettings(*in.Settings)
	}

	var (
		text      string
		citations []Citation
		meta      Metadata
		pathKind  string
		genErr    error
	)

	if in.KnowledgeBaseID != "" {
		pathKind = PathRetrieval
		text, citations, meta, genErr = s.runRetrieval(ctx, in, modelARN, cfg)
	} else {
		pathKind = PathInvoke
		text, meta, genErr = s.runInvoke(ctx, in, modelARN, cfg)
	}

	if genErr != nil {
		s.record(ctx, in, modelARN, pathKind, started, "", genErr)
		s.emit(ctx, out, errorFragment(genErr.Error()))
		return
	}

	s.record(ctx, in, modelARN, pathKind, started, metaTotalCost(meta), nil)

	for _, f := range chunkFragments(text, citations, &meta) {
		if !s.emit(ctx, out, f) {
			return
		}
		// Cooperative yield so the consumer can drain between fragments.
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return
		}
	}
}

// runRetrieval executes the knowledge-base path: retrieve-and-generate,
// citation extraction, flat-rate cost accounting.
func (s *Service) runRetrieval(ctx context.Context, in Input, modelARN string, cfg model.Config) (string, []Citation, Metadata, error) {
	req := buildRetrievalRequest(in.Prompt, in.KnowledgeBaseID, modelARN, in.DocumentID)
	body, err := s.retriever.RetrieveAndGenerate(ctx, req)
	if err != nil {
		return "", nil, Metadata{}, fmt.Errorf("knowledge base query failed: %w", err)
	}

	text := extractRetrievalText(body)
	citations := extractCitations(body)

	usage := costing.TokenUsage(body, cfg.Provider, cfg.ModelID)
	metrics := costing.CalculateRetrieval(usage)
	meta := Metadata{
		PageNumbers: allPages(body, citations),
		CostMetrics: &metrics,
	}
	return text, citations, meta, nil
}

// runInvoke executes the direct path: provider request translation,
// invoke, response extraction, token-priced cost accounting.
func (s *Service) runInvoke(ctx context.Context, in Input, modelARN string, cfg model.Config) (string, Metadata, error) {
	reqBody, err := buildRequestBody(in.Prompt, cfg)
	if err != nil {
		return "", Metadata{}, err
	}

	body, err := s.invoker.InvokeModel(ctx, modelARN, reqBody)
	if err != nil {
		return "", Metadata{}, fmt.Errorf("direct model query failed: %w", err)
	}

	text, err := extractGeneratedText(body, cfg)
	if err != nil {
		return "", Metadata{}, err
	}

	usage := costing.TokenUsage(body, cfg.Provider, cfg.ModelID)
	metrics := costing.Calculate(cfg.Pricing, usage)
	meta := Metadata{
		PageNumbers: []int{},
		CostMetrics: &metrics,
	}
	return text, meta, nil
}

// emit sends one fragment, giving up when the consumer is gone.
func (s *Service) emit(ctx context.Context, out chan<- Fragment, f Fragment) bool {
	select {
	case out <- f:
		return true
	case <-ctx.Done():
		return false
	}
}

// record writes the query audit row when a recorder is wired.
func (s *Service) record(ctx context.Context, in Input, modelARN, pathKind string, started time.Time, totalCost string, genErr error) {
	if s.recorder == nil {
		return
	}
	rec := QueryRecord{
		ClientID:    in.ClientID,
		ModelARN:    modelARN,
		PathKind:    pathKind,
		PromptChars: len(in.Prompt),
		DurationMS:  time.Since(started).Milliseconds(),
		TotalCost:   totalCost,
	}
	if genErr != nil {
		rec.ErrorText = genErr.Error()
	}
	if err := s.recorder.RecordQuery(ctx, rec); err != nil {
		log.Printf("generation: record query: %v", err)
	}
}

func metaTotalCost(meta Metadata) string {
	if meta.CostMetrics == nil {
		return ""
	}
	return meta.CostMetrics.TotalCost
}
