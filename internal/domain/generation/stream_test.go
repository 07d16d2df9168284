package generation

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"
)

func TestChunkFragments_ReassemblyAndShape(t *testing.T) {
	t.Parallel()

	// 250 characters → exactly 3 fragments of lengths 100, 100, 50.
	text := strings.Repeat("a", 250)
	fragments := chunkFragments(text, nil, &Metadata{PageNumbers: []int{}})

	if len(fragments) != 3 {
		t.Fatalf("len(fragments) = %d, want 3", len(fragments))
	}
	wantLens := []int{100, 100, 50}
	var rebuilt strings.Builder
	for i, f := range fragments {
		if len(f.Chunk) != wantLens[i] {
			t.Errorf("fragment %d length = %d, want %d", i, len(f.Chunk), wantLens[i])
		}
		if f.IsFinal != (i == 2) {
			t.Errorf("fragment %d IsFinal = %v", i, f.IsFinal)
		}
		if f.PageNumbers != nil {
			t.Errorf("fragment %d carries page numbers with no citations", i)
		}
		if (f.Metadata != nil) != (i == 2) {
			t.Errorf("fragment %d metadata presence wrong", i)
		}
		rebuilt.WriteString(f.Chunk)
	}
	if rebuilt.String() != text {
		t.Error("concatenated fragments do not reproduce the input text")
	}
}

func TestChunkFragments_EmptyText(t *testing.T) {
	t.Parallel()

	fragments := chunkFragments("", nil, &Metadata{PageNumbers: []int{}})
	if len(fragments) != 1 {
		t.Fatalf("len(fragments) = %d, want 1", len(fragments))
	}
	if !fragments[0].IsFinal || fragments[0].Chunk != "" {
		t.Fatalf("fragment = %+v, want empty terminal fragment", fragments[0])
	}
	if fragments[0].Metadata == nil {
		t.Fatal("terminal fragment must carry metadata")
	}
}

// Multi-byte characters are never split across fragments and count as
// one character each, matching the citation span coordinate space.
func TestChunkFragments_RuneBoundaries(t *testing.T) {
	t.Parallel()

	text := strings.Repeat("é", 150)
	fragments := chunkFragments(text, nil, &Metadata{})

	if len(fragments) != 2 {
		t.Fatalf("len(fragments) = %d, want 2", len(fragments))
	}
	if got := len([]rune(fragments[0].Chunk)); got != 100 {
		t.Errorf("first fragment runes = %d, want 100", got)
	}
	if fragments[0].Chunk+fragments[1].Chunk != text {
		t.Error("reassembly failed on multi-byte text")
	}
}

func TestChunkFragments_CitationOverlap(t *testing.T) {
	t.Parallel()

	text := strings.Repeat("x", 200)
	citations := []Citation{
		{Span: Span{Start: 0, End: 50}, Pages: []int{3, 1}},
		{Span: Span{Start: 150, End: 200}, Pages: []int{7}},
	}
	fragments := chunkFragments(text, citations, &Metadata{})

	if len(fragments) != 2 {
		t.Fatalf("len(fragments) = %d, want 2", len(fragments))
	}
	// [0,50) overlaps [0,100): pages sorted and attached.
	if !reflect.DeepEqual(fragments[0].PageNumbers, []int{1, 3}) {
		t.Errorf("fragment 0 pages = %v, want [1 3]", fragments[0].PageNumbers)
	}
	// [150,200) does not overlap [0,100) but does overlap [100,200).
	if !reflect.DeepEqual(fragments[1].PageNumbers, []int{7}) {
		t.Errorf("fragment 1 pages = %v, want [7]", fragments[1].PageNumbers)
	}
}

// A span touching a fragment boundary does not overlap it: the test is
// strict, not closed.
func TestChunkFragments_TouchingSpanDoesNotCount(t *testing.T) {
	t.Parallel()

	text := strings.Repeat("x", 200)
	citations := []Citation{
		{Span: Span{Start: 100, End: 150}, Pages: []int{4}},
	}
	fragments := chunkFragments(text, citations, &Metadata{})

	if fragments[0].PageNumbers != nil {
		t.Errorf("fragment [0,100) pages = %v, span starting at 100 must not attach", fragments[0].PageNumbers)
	}
	if !reflect.DeepEqual(fragments[1].PageNumbers, []int{4}) {
		t.Errorf("fragment [100,200) pages = %v, want [4]", fragments[1].PageNumbers)
	}
}

// A citation spanning a fragment boundary attaches to both sides.
func TestChunkFragments_SpanAcrossBoundary(t *testing.T) {
	t.Parallel()

	text := strings.Repeat("x", 200)
	citations := []Citation{
		{Span: Span{Start: 90, End: 110}, Pages: []int{2}},
	}
	fragments := chunkFragments(text, citations, &Metadata{})

	if !reflect.DeepEqual(fragments[0].PageNumbers, []int{2}) {
		t.Errorf("fragment 0 pages = %v, want [2]", fragments[0].PageNumbers)
	}
	if !reflect.DeepEqual(fragments[1].PageNumbers, []int{2}) {
		t.Errorf("fragment 1 pages = %v, want [2]", fragments[1].PageNumbers)
	}
}

func TestFragment_MarshalJSON(t *testing.T) {
	t.Parallel()

	t.Run("success fragment", func(t *testing.T) {
		raw, err := json.Marshal(Fragment{Chunk: "hi", PageNumbers: []int{1, 2}})
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		var m map[string]any
		if err := json.Unmarshal(raw, &m); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if m["chunk"] != "hi" || m["is_final"] != false {
			t.Errorf("fragment json = %s", raw)
		}
		if _, present := m["chunk_page_numbers"]; !present {
			t.Errorf("chunk_page_numbers missing: %s", raw)
		}
		if _, present := m["error"]; present {
			t.Errorf("success fragment must not carry error: %s", raw)
		}
	})

	t.Run("empty chunk still serialized", func(t *testing.T) {
		raw, _ := json.Marshal(Fragment{Chunk: "", IsFinal: true, Metadata: &Metadata{PageNumbers: []int{}}})
		if !strings.Contains(string(raw), `"chunk":""`) {
			t.Errorf("empty chunk dropped: %s", raw)
		}
	})

	t.Run("error fragment", func(t *testing.T) {
		raw, _ := json.Marshal(errorFragment("boom"))
		var m map[string]any
		if err := json.Unmarshal(raw, &m); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if m["error"] != "boom" || m["is_final"] != true {
			t.Errorf("error fragment json = %s", raw)
		}
		if _, present := m["chunk"]; present {
			t.Errorf("error fragment must not carry chunk: %s", raw)
		}
	})
}
