package cover

import "testing"

func TestResolve(t *testing.T) {
	r := NewResolver()

	tests := []struct {
		name     string
		fm       map[string]any
		title    string
		category string
		index    int
		want     string
	}{
		{
			name: "explicit image wins",
			fm:   map[string]any{"image": "  /images/x.png "},
			want: "/images/x.png",
		},
		{
			name: "field priority",
			fm:   map[string]any{"thumbnail": "/t.png", "ogImage": "/og.png"},
			want: "/og.png",
		},
		{
			name: "empty field skipped",
			fm:   map[string]any{"image": "   ", "heroImage": "https://cdn.example.com/h.jpg"},
			want: "https://cdn.example.com/h.jpg",
		},
		{
			name: "object with src",
			fm:   map[string]any{"coverImage": map[string]any{"src": "/c.jpg"}},
			want: "/c.jpg",
		},
		{
			name:  "title keyword",
			fm:    map[string]any{},
			title: "Better Parent Evenings",
			want:  "/images/blog/parent-communication.jpg",
		},
		{
			name:     "category pool by index",
			title:    "Five quick wins",
			category: "AI Tools",
			index:    4,
			want:     "/images/blog/ai-tools-2.jpg",
		},
		{
			name:     "negative index",
			title:    "Five quick wins",
			category: "AI Tools",
			index:    -3,
			want:     "/images/blog/ai-tools.jpg",
		},
		{
			name:     "unknown category",
			title:    "Hello",
			category: "Science Of Learning",
			want:     DefaultImage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := r.Resolve(tt.fm, tt.title, tt.category, tt.index)
			if got != tt.want {
				t.Errorf("Resolve() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestResolveDeterministic(t *testing.T) {
	r := NewResolver()
	for i := 0; i < 10; i++ {
		a := r.Resolve(nil, "Untitled", "EdTech", i)
		b := r.Resolve(nil, "Untitled", "EdTech", i)
		if a != b || a == "" {
			t.Fatalf("index %d: %q vs %q", i, a, b)
		}
	}
}

func TestWithPools(t *testing.T) {
	r := NewResolver().WithPools(map[string][]string{"News": {"/n.jpg"}})
	if got := r.Resolve(nil, "Weekly", "News", 7); got != "/n.jpg" {
		t.Errorf("got %q", got)
	}
	if got := NewResolver().Resolve(nil, "Weekly", "News", 7); got != DefaultImage {
		t.Errorf("original resolver changed: %q", got)
	}
}
