package extract

import (
	"strings"
	"testing"

	"github.com/dgallion1/ctidoc/internal/ctijson"
	"github.com/dgallion1/ctidoc/internal/normalize"
)

const sampleRecord = `{
  "name": "  Cobalt   Strike ",
  "empty": "",
  "none": null,
  "list": [],
  "obj": {},
  "confidence": 0,
  "revoked": false,
  "labels": ["beacon", "", null, "  c2\nframework "],
  "nested": {"drop": {"deeper": null}, "keep": {"x": 1}},
  "refs": [{"source_name": "mitre", "url": ""}, {"url": null}]
}`

func TestExtract_PrunesEmptyValues(t *testing.T) {
	root := Extract(ctijson.MustParse(sampleRecord))
	if root == nil {
		t.Fatal("expected a tree")
	}

	var keys []string
	for _, c := range root.Children {
		keys = append(keys, c.Key)
	}
	got := strings.Join(keys, ",")
	want := "name,confidence,revoked,labels,nested,refs"
	if got != want {
		t.Errorf("expected keys %q, got %q", want, got)
	}

	if n := root.Child("nested"); n == nil || n.Child("drop") != nil || n.Child("keep") == nil {
		t.Errorf("expected nested.drop pruned and nested.keep kept")
	}
	if refs := root.Child("refs"); refs == nil || len(refs.Children) != 1 {
		t.Errorf("expected one surviving reference")
	}
}

func TestExtract_NoEmptyNodeAtAnyDepth(t *testing.T) {
	root := Extract(ctijson.MustParse(sampleRecord))
	var check func(n *Node)
	check = func(n *Node) {
		if n.IsContainer() {
			if len(n.Children) == 0 {
				t.Errorf("empty container at %q", n.Path)
			}
			for _, c := range n.Children {
				check(c)
			}
			return
		}
		if n.Scalar.IsNull() || (n.Scalar.IsString() && n.Scalar.Str() == "") {
			t.Errorf("empty leaf at %q", n.Path)
		}
	}
	check(root)
}

func TestExtract_LeavesAreNormalized(t *testing.T) {
	root := Extract(ctijson.MustParse(sampleRecord))
	if got := root.Child("name").Scalar.Str(); got != normalize.Text("  Cobalt   Strike ") {
		t.Errorf("expected normalized name, got %q", got)
	}
	labels := root.Child("labels")
	if len(labels.Children) != 2 {
		t.Fatalf("expected 2 labels, got %d", len(labels.Children))
	}
	if got := labels.Children[1].Scalar.Str(); got != "c2 framework" {
		t.Errorf("expected %q, got %q", "c2 framework", got)
	}
}

func TestExtract_KeepsZeroAndFalse(t *testing.T) {
	root := Extract(ctijson.MustParse(sampleRecord))
	if c := root.Child("confidence"); c == nil || c.Scalar.Text() != "0" {
		t.Errorf("expected confidence 0 to survive")
	}
	if c := root.Child("revoked"); c == nil || c.Kind != ctijson.Bool || c.Scalar.Bool() {
		t.Errorf("expected revoked false to survive")
	}
}

func TestExtract_Paths(t *testing.T) {
	root := Extract(ctijson.MustParse(sampleRecord))
	if p := root.Child("labels").Children[1].Path; p != "labels[3]" {
		t.Errorf("expected path %q, got %q", "labels[3]", p)
	}
	if p := root.Child("refs").Children[0].Child("source_name").Path; p != "refs[0].source_name" {
		t.Errorf("expected path %q, got %q", "refs[0].source_name", p)
	}
	if p := root.Child("nested").Child("keep").Child("x").Path; p != "nested.keep.x" {
		t.Errorf("expected path %q, got %q", "nested.keep.x", p)
	}
}

func TestExtract_EverythingPruned(t *testing.T) {
	for _, in := range []string{`null`, `""`, `[]`, `{}`, `{"a":{"b":[null,""]}}`} {
		if root := Extract(ctijson.MustParse(in)); root != nil {
			t.Errorf("Extract(%s): expected nil, got %+v", in, root)
		}
	}
}

func TestNode_ValueRoundTrip(t *testing.T) {
	root := Extract(ctijson.MustParse(`{"b":[" x ",{"y":2}],"a":true}`))
	if got := root.Value().JSON(); got != `{"b":["x",{"y":2}],"a":true}` {
		t.Errorf("unexpected value %s", got)
	}
}

func TestKeyPaths(t *testing.T) {
	paths := KeyPaths(ctijson.MustParse(`{"b":{"c":null},"a":[{"d":1},"x"]}`))
	want := []string{"a", "a[0]", "a[0].d", "a[1]", "b", "b.c"}
	if len(paths) != len(want) {
		t.Fatalf("expected %v, got %v", want, paths)
	}
	for i := range want {
		if paths[i] != want[i] {
			t.Errorf("path %d: expected %q, got %q", i, want[i], paths[i])
		}
	}
}
