package binding

import "testing"

func TestInterpolate(t *testing.T) {
	data := []byte(`{"user":{"name":"Ada","tags":["math","engines"]},"count":3,"ok":true}`)
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "no placeholders", "no placeholders"},
		{"nested", "hi ${user.name}", "hi Ada"},
		{"gjson index", "${user.tags.1}", "engines"},
		{"bracket index", "${user.tags[0]}", "math"},
		{"number and bool", "${count} items, ${ok}", "3 items, true"},
		{"spaces trimmed", "${ user.name }", "Ada"},
		{"missing kept", "${user.age}", "${user.age}"},
		{"several", "${user.name}/${user.tags[1]}", "Ada/engines"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Interpolate(tt.in, data); got != tt.want {
				t.Fatalf("Interpolate(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestInterpolateWithoutData(t *testing.T) {
	in := "hello ${name}"
	if got := Interpolate(in, nil); got != in {
		t.Fatalf("nil data should leave text unchanged, got %q", got)
	}
	if got := Interpolate(in, []byte("{not json")); got != in {
		t.Fatalf("invalid JSON should leave text unchanged, got %q", got)
	}
}

func TestLookup(t *testing.T) {
	data := []byte(`{"a":{"b":[{"c":"deep"}]}}`)
	if v, ok := Lookup(data, "a.b[0].c"); !ok || v != "deep" {
		t.Fatalf("Lookup = %q, %v", v, ok)
	}
	if _, ok := Lookup(data, "a.x"); ok {
		t.Fatalf("missing path should report false")
	}
}

func TestToGJSONPath(t *testing.T) {
	cases := map[string]string{
		"a.b":       "a.b",
		"a[0]":      "a.0",
		"a.b[1][2]": "a.b.1.2",
		"[3].x":     "3.x",
	}
	for in, want := range cases {
		if got := toGJSONPath(in); got != want {
			t.Errorf("toGJSONPath(%q) = %q, want %q", in, got, want)
		}
	}
}
