package tree

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/matzehuels/ziplock/pkg/manifest"
)

func sample() Tree {
	b := &Node{Version: "2.0.1"}
	a := &Node{Version: "1.2.0", Deps: Tree{}}
	a.Deps.Set(manifest.Production, "b", b)

	t := Tree{}
	t.Set(manifest.Production, "a", a)
	t.Set(manifest.Development, "jest", &Node{Version: "29.7.0"})
	return t
}

func TestEmptyTreeJSON(t *testing.T) {
	for _, tr := range []Tree{nil, {}} {
		data, err := json.Marshal(tr)
		if err != nil {
			t.Fatalf("Marshal() error: %v", err)
		}
		if string(data) != "{}" {
			t.Errorf("Marshal(empty) = %s, want {}", data)
		}
	}
}

func TestTreeJSONShape(t *testing.T) {
	data, err := json.Marshal(sample())
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}

	want := `{"dependencies":{"a":{"dependencies":{"b":{"version":"2.0.1"}},"version":"1.2.0"}},"devDependencies":{"jest":{"version":"29.7.0"}}}`
	if string(data) != want {
		t.Errorf("Marshal() =\n%s\nwant\n%s", data, want)
	}
}

func TestTreeJSONRoundTrip(t *testing.T) {
	data, _ := json.Marshal(sample())

	var back Tree
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal() error: %v", err)
	}

	n, ok := back.Lookup(Step{manifest.Production, "a"}, Step{manifest.Production, "b"})
	if !ok {
		t.Fatal("Lookup(a/b) not found after round trip")
	}
	if n.Version != "2.0.1" {
		t.Errorf("b version = %q, want 2.0.1", n.Version)
	}
}

func TestLookup(t *testing.T) {
	tr := sample()

	if _, ok := tr.Lookup(); ok {
		t.Error("empty path should not resolve to a node")
	}
	if _, ok := tr.Lookup(Step{manifest.Optional, "a"}); ok {
		t.Error("a is not in the optional group")
	}
	n, ok := tr.Lookup(Step{manifest.Development, "jest"})
	if !ok || n.Version != "29.7.0" {
		t.Errorf("Lookup(jest) = %v, %v", n, ok)
	}
}

func TestCountAndWalk(t *testing.T) {
	tr := sample()
	if got := tr.Count(); got != 3 {
		t.Errorf("Count() = %d, want 3", got)
	}

	var visited []string
	_ = tr.Walk(func(path []Step, n *Node) error {
		visited = append(visited, pathID(path))
		return nil
	})
	want := []string{"/dependencies:a", "/dependencies:a/dependencies:b", "/devDependencies:jest"}
	if strings.Join(visited, ",") != strings.Join(want, ",") {
		t.Errorf("Walk order = %v, want %v", visited, want)
	}
}

func TestMerge(t *testing.T) {
	dst := Tree{}
	dst.Set(manifest.Production, "a", &Node{Version: "1.0.0"})
	src := Tree{}
	src.Set(manifest.Production, "b", &Node{Version: "2.0.0"})
	src.Set(manifest.Optional, "c", &Node{Version: "3.0.0"})

	dst.Merge(src)

	if dst.Count() != 3 {
		t.Errorf("Count() after merge = %d, want 3", dst.Count())
	}
}

func TestWriteText(t *testing.T) {
	var buf bytes.Buffer
	if err := sample().WriteText(&buf, "app"); err != nil {
		t.Fatalf("WriteText() error: %v", err)
	}

	want := "app\n" +
		"├── a@1.2.0\n" +
		"│   └── b@2.0.1\n" +
		"└── jest@29.7.0 (dev)\n"
	if buf.String() != want {
		t.Errorf("WriteText() =\n%s\nwant\n%s", buf.String(), want)
	}
}

func TestToDOT(t *testing.T) {
	dot := sample().ToDOT("app")

	for _, want := range []string{
		`"/" [label="app"`,
		`"/" -> "/dependencies:a";`,
		`"/dependencies:a" -> "/dependencies:a/dependencies:b";`,
		`"/" -> "/devDependencies:jest" [style=dotted];`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("ToDOT() missing %q\n%s", want, dot)
		}
	}
}
