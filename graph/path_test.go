package graph

import "testing"

func TestPathDescendantOf(t *testing.T) {
	cases := []struct {
		p, root Path
		want    bool
	}{
		{"/foo/bar", "/foo", true},
		{"/foo", "/foo", true},
		{"/foobar", "/foo", false},
		{"/foo/bar/baz", "/foo", true},
		{"/", "/foo", false},
	}
	for _, c := range cases {
		if got := c.p.DescendantOf(c.root); got != c.want {
			t.Errorf("%q.DescendantOf(%q) = %v, want %v", c.p, c.root, got, c.want)
		}
	}
}

func TestRenamePath(t *testing.T) {
	cases := []struct {
		p, oldRoot, newRoot Path
		want                Path
	}{
		{"/a", "/a", "/b", "/b"},
		{"/a/child", "/a", "/b", "/b/child"},
		{"/unrelated", "/a", "/b", "/unrelated"},
	}
	for _, c := range cases {
		if got := RenamePath(c.p, c.oldRoot, c.newRoot); got != c.want {
			t.Errorf("RenamePath(%q, %q, %q) = %q, want %q", c.p, c.oldRoot, c.newRoot, got, c.want)
		}
	}
}

func TestIsValidSymbol(t *testing.T) {
	good := []string{"foo", "_foo", "foo_bar", "a1"}
	bad := []string{"", "1foo", "foo-bar", "foo bar", "foo/bar"}
	for _, s := range good {
		if !IsValidSymbol(s) {
			t.Errorf("IsValidSymbol(%q) = false, want true", s)
		}
	}
	for _, s := range bad {
		if IsValidSymbol(s) {
			t.Errorf("IsValidSymbol(%q) = true, want false", s)
		}
	}
}
