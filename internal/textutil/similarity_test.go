package textutil

import (
	"math"
	"testing"
)

func TestCosineSimilarity(t *testing.T) {
	fp := NewFingerprint
	tests := []struct {
		name    string
		a, b    *Fingerprint
		want    float64
		between bool
	}{
		{name: "both nil"},
		{name: "left nil", b: fp("ナチュラル ボブ")},
		{name: "right nil", a: fp("ナチュラル ボブ")},
		{name: "zero norm", a: &Fingerprint{weights: map[string]float64{}}, b: fp("hello world test")},
		{name: "identical", a: fp("ナチュラル ボブ 透明感カラー"), b: fp("ナチュラル ボブ 透明感カラー"), want: 1},
		{name: "disjoint", a: fp("apple banana cherry"), b: fp("dog elephant frog")},
		{name: "partial overlap", a: fp("ショートボブ 外ハネ"), b: fp("ボブ ストレート"), between: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CosineSimilarity(tt.a, tt.b)
			if tt.between {
				if got <= 0 || got >= 1 {
					t.Fatalf("CosineSimilarity = %v, want in (0, 1)", got)
				}
				return
			}
			if math.Abs(got-tt.want) > 1e-9 {
				t.Fatalf("CosineSimilarity = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCosineSimilaritySymmetric(t *testing.T) {
	a := NewFingerprint("レイヤー ウルフ 韓国風")
	b := NewFingerprint("ウルフ マッシュ")

	if ab, ba := CosineSimilarity(a, b), CosineSimilarity(b, a); ab != ba {
		t.Errorf("CosineSimilarity not symmetric: (%v, %v)", ab, ba)
	}
}

func TestNewFingerprintEmpty(t *testing.T) {
	if fp := NewFingerprint(""); fp != nil {
		t.Error("expected nil for empty text")
	}
	if fp := NewFingerprint("a b c !!"); fp != nil {
		t.Error("expected nil for text with only single-letter tokens")
	}
}

func TestNewFingerprintNormCalculation(t *testing.T) {
	// hello:2, world:1 -> sqrt(5)
	fp := NewFingerprint("hello hello world")
	if fp == nil {
		t.Fatal("expected fingerprint")
	}
	if math.Abs(fp.norm-math.Sqrt(5)) > 0.0001 {
		t.Errorf("norm = %v, want %v", fp.norm, math.Sqrt(5))
	}
}

func TestTokenize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"latin words", "Hello World", []string{"hello", "world"}},
		{"filters single letters", "a to the", []string{"to", "the"}},
		{"punctuation", "Hello, World!", []string{"hello", "world"}},
		{"katakana bigrams", "ボブ", []string{"ボブ"}},
		{"kanji bigrams", "透明感", []string{"透明", "明感"}},
		{"single cjk rune", "髪", []string{"髪"}},
		{"fullwidth normalized", "ＢＯＢ", []string{"bob"}},
		{"mixed scripts", "韓国風layer", []string{"韓国", "国風", "layer"}},
		{"prolonged sound mark", "ショート", []string{"ショ", "ョー", "ート"}},
		{"empty", "", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Tokenize(tt.input)
			if len(got) != len(tt.want) {
				t.Fatalf("Tokenize() = %v (len %d), want %v (len %d)", got, len(got), tt.want, len(tt.want))
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("token[%d] = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestFingerprintTokenCount(t *testing.T) {
	tests := []struct {
		name string
		fp   *Fingerprint
		want int
	}{
		{"nil fingerprint", nil, 0},
		{"unique tokens", NewFingerprint("hello world programming"), 3},
		{"repeated tokens", NewFingerprint("hello hello world world world"), 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.fp.TokenCount(); got != tt.want {
				t.Errorf("TokenCount() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestWithIDFDownweightsCommonTerms(t *testing.T) {
	corpus := NewCorpus()
	docs := []string{"ボブ 外ハネ", "ボブ ストレート", "ボブ ウェーブ"}
	for _, doc := range docs {
		corpus.Add(NewFingerprint(doc))
	}
	idf := corpus.IDF()
	if idf["ボブ"] >= idf["ハネ"] {
		t.Fatalf("expected shared term to weigh less: bob=%v hane=%v", idf["ボブ"], idf["ハネ"])
	}

	query := NewFingerprint("ボブ 外ハネ").WithIDF(idf)
	best := CosineSimilarity(query, NewFingerprint(docs[0]).WithIDF(idf))
	other := CosineSimilarity(query, NewFingerprint(docs[1]).WithIDF(idf))
	if best <= other {
		t.Fatalf("expected matching doc to score higher: %v <= %v", best, other)
	}
}
