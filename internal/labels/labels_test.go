package labels_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/atinyakov/IdentityGrid/internal/labels"
	"github.com/atinyakov/IdentityGrid/internal/models"
)

func items(texts ...string) []models.LabelItem {
	out := make([]models.LabelItem, 0, len(texts))
	for _, t := range texts {
		out = append(out, models.LabelItem{Text: t})
	}
	return out
}

func TestParse(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want []models.LabelItem
	}{
		{"single", "admin", items("admin")},
		{"several", "admin;user;guest", items("admin", "user", "guest")},
		{"whitespace around tokens", "  admin ; user  ", items("admin", "user")},
		{"trailing separator", " admin ; user ;", items("admin", "user")},
		{"leading and double separators", ";;admin;;;user", items("admin", "user")},
		{"empty", "", items()},
		{"only whitespace", "   \t ", items()},
		{"only separators", " ; ; ", items()},
		{"inner spaces kept", "team lead; on call", items("team lead", "on call")},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := labels.Parse(tc.in)
			assert.NotNil(t, got)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestStringify(t *testing.T) {
	cases := []struct {
		name string
		in   []models.LabelItem
		want string
	}{
		{"nil", nil, ""},
		{"empty", items(), ""},
		{"single", items("admin"), "admin"},
		{"several", items("admin", "user"), "admin;user"},
		{"trims", items("  admin ", " user"), "admin;user"},
		{"drops blank", items("admin", "   ", "", "user"), "admin;user"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, labels.Stringify(tc.in))
		})
	}
}

func TestStringifyParse_NormalizedIsStable(t *testing.T) {
	for _, s := range []string{"", "admin", "admin;user", "a b;c;d e f"} {
		assert.Equal(t, s, labels.Stringify(labels.Parse(s)), "input %q", s)
	}
}

func TestStringifyParse_Normalizes(t *testing.T) {
	assert.Equal(t, "admin;user", labels.Stringify(labels.Parse(" ;admin ;; user; ")))
}
