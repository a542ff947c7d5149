package clips

import "testing"

func TestValidateRequiredFields(t *testing.T) {
	mutations := map[string]func(*Request){
		"files":             func(r *Request) { r.Files = nil },
		"base":              func(r *Request) { r.Base = "" },
		"length":            func(r *Request) { r.Length = 0 },
		"accountId":         func(r *Request) { r.AccountID = "" },
		"clipId":            func(r *Request) { r.ClipID = "" },
		"gameId":            func(r *Request) { r.GameID = "" },
		"objectStoreConfig": func(r *Request) { r.ObjectStoreConfig = nil },
		"objectStoreBucket": func(r *Request) { r.ObjectStoreBucket = "" },
	}
	for name, mutate := range mutations {
		req := testRequest()
		mutate(req)
		if err := req.Validate(); err == nil {
			t.Errorf("missing %s: expected validation error", name)
		}
	}

	req := testRequest()
	if err := req.Validate(); err != nil {
		t.Errorf("complete request rejected: %v", err)
	}

	// Metadata store is the one optional collaborator.
	req.MetadataStoreConfig = nil
	if err := req.Validate(); err != nil {
		t.Errorf("request without metadata config rejected: %v", err)
	}
}

func TestSegmentURLs(t *testing.T) {
	req := &Request{
		Files: []string{"0.ts", "1.ts"},
		Base:  "https://cdn.example.com/hls/",
	}
	urls := req.SegmentURLs()
	want := []string{"https://cdn.example.com/hls/0.ts", "https://cdn.example.com/hls/1.ts"}
	for i := range want {
		if urls[i] != want[i] {
			t.Errorf("url %d = %q, want %q", i, urls[i], want[i])
		}
	}
}
