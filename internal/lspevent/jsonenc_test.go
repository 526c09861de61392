package lspevent

import "testing"

func TestEncodeJSON_SpacesSeparatorsLikeJSONDumps(t *testing.T) {
	cases := []struct {
		name string
		in   any
		want string
	}{
		{"single field", map[string]string{"method": "didOpen"}, `{"method": "didOpen"}`},
		{"nested", map[string]any{"a": map[string]int{"b": 1}}, `{"a": {"b": 1}}`},
		{"string with punctuation", map[string]string{"x": "a,b:c"}, `{"x": "a,b:c"}`},
		{"array", []int{1, 2, 3}, `[1, 2, 3]`},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, err := EncodeJSON(c.in)
			if err != nil {
				t.Fatalf("EncodeJSON failed: %v", err)
			}
			if string(got) != c.want {
				t.Errorf("EncodeJSON(%v) = %q, want %q", c.in, got, c.want)
			}
		})
	}
}
