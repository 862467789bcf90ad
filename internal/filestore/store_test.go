package filestore

import (
	"fmt"
	"math/rand"
	"reflect"
	"slices"
	"testing"

	"github.com/michaelbrown/codepad/internal/language"
)

func TestNewSeedsDefaults(t *testing.T) {
	s := New()

	want := []string{"main.js", "example.py", "styles.css", "index.html"}
	if got := s.Names(); !reflect.DeepEqual(got, want) {
		t.Fatalf("Names() = %v, want %v", got, want)
	}
	if s.Current() != "main.js" {
		t.Errorf("Current() = %q, want main.js", s.Current())
	}

	rec, ok := s.Get("example.py")
	if !ok {
		t.Fatal("example.py missing")
	}
	if rec.Language != language.Python || rec.Kind != KindFile {
		t.Errorf("example.py = %+v", rec)
	}
}

func TestCreate(t *testing.T) {
	s := New()

	if !s.Create("x.py") {
		t.Fatal("Create(x.py) should apply")
	}
	rec, _ := s.Get("x.py")
	lang, tmpl := language.Resolve("x.py")
	if rec.Language != lang || rec.Content != tmpl {
		t.Errorf("record = %+v", rec)
	}
	if s.Current() != "x.py" {
		t.Errorf("Current() = %q, want x.py", s.Current())
	}
}

func TestCreateIgnoresBlankAndDuplicate(t *testing.T) {
	s := New()
	before := s.Serialize()

	for _, name := range []string{"", "   ", "main.js", "\xff.js"} {
		if s.Create(name) {
			t.Errorf("Create(%q) should be a no-op", name)
		}
	}
	if s.Serialize() != before {
		t.Error("store changed after ignored creates")
	}
	if s.Current() != "main.js" {
		t.Errorf("Current() = %q, want main.js", s.Current())
	}
}

func TestCreateKeepsNameVerbatim(t *testing.T) {
	s := New()
	if !s.Create(" pad.js ") {
		t.Fatal("Create should apply")
	}
	if s.Current() != " pad.js " {
		t.Errorf("Current() = %q, want %q", s.Current(), " pad.js ")
	}
	if _, ok := s.Get("pad.js"); ok {
		t.Error("name must not be trimmed")
	}
	if !s.UpdateContent(" pad.js ", "mine") {
		t.Error("UpdateContent with the created name should apply")
	}
}

func TestCreateTwiceKeepsRecord(t *testing.T) {
	s := New()
	s.Create("notes.md")
	s.UpdateContent("notes.md", "edited")

	if s.Create("notes.md") {
		t.Fatal("second Create should be a no-op")
	}
	rec, _ := s.Get("notes.md")
	if rec.Content != "edited" {
		t.Errorf("content = %q, want edited", rec.Content)
	}
}

func TestDeleteLastFileRefused(t *testing.T) {
	s := New()
	for _, name := range s.Names()[1:] {
		if !s.Delete(name) {
			t.Fatalf("Delete(%q) should apply", name)
		}
	}
	if s.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", s.Len())
	}
	if s.Delete("main.js") {
		t.Fatal("deleting the last file should be refused")
	}
	if s.Len() != 1 || s.Current() != "main.js" {
		t.Errorf("store = %v current %q", s.Names(), s.Current())
	}
}

func TestDeleteAbsent(t *testing.T) {
	s := New()
	if s.Delete("nope.txt") {
		t.Error("Delete of absent name should be a no-op")
	}
}

func TestDeleteCurrentReassigns(t *testing.T) {
	s := New()
	s.Select("styles.css")

	if !s.Delete("styles.css") {
		t.Fatal("Delete should apply")
	}
	if s.Current() != "main.js" {
		t.Errorf("Current() = %q, want first remaining key main.js", s.Current())
	}

	s.Delete("main.js")
	if s.Current() != "example.py" {
		t.Errorf("Current() = %q, want example.py", s.Current())
	}
}

func TestDeleteOtherKeepsCurrent(t *testing.T) {
	s := New()
	s.Select("index.html")
	s.Delete("main.js")
	if s.Current() != "index.html" {
		t.Errorf("Current() = %q, want index.html", s.Current())
	}
}

func TestSelectUnknownIgnored(t *testing.T) {
	s := New()
	if s.Select("ghost.js") {
		t.Error("Select of absent name should be a no-op")
	}
	if s.Current() != "main.js" {
		t.Errorf("Current() = %q", s.Current())
	}
}

func TestUpdateContent(t *testing.T) {
	s := New()
	if !s.UpdateContent("main.js", "return 1") {
		t.Fatal("UpdateContent should apply")
	}
	rec, _ := s.Get("main.js")
	if rec.Content != "return 1" || rec.Language != language.JavaScript {
		t.Errorf("record = %+v", rec)
	}
	if s.UpdateContent("ghost.js", "x") {
		t.Error("UpdateContent of absent name should be a no-op")
	}
	if _, ok := s.Get("ghost.js"); ok {
		t.Error("UpdateContent must not create files")
	}
}

func TestInvariantsUnderRandomOps(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	names := []string{"a.js", "b.py", "c.css", "d.html", "e.json", "main.js", "", "f"}

	s := New()
	for i := 0; i < 2000; i++ {
		name := names[rng.Intn(len(names))]
		switch rng.Intn(4) {
		case 0:
			s.Create(name)
		case 1:
			s.Delete(name)
		case 2:
			s.Select(name)
		case 3:
			s.UpdateContent(name, fmt.Sprintf("step %d", i))
		}

		snap := s.Snapshot()
		if len(snap.Names) < 1 {
			t.Fatalf("step %d: store is empty", i)
		}
		if len(snap.Names) != len(snap.Files) {
			t.Fatalf("step %d: duplicate names %v", i, snap.Names)
		}
		sorted := slices.Clone(snap.Names)
		slices.Sort(sorted)
		if len(slices.Compact(sorted)) != len(snap.Names) {
			t.Fatalf("step %d: duplicate names %v", i, snap.Names)
		}
		if _, ok := snap.File(snap.Current); !ok {
			t.Fatalf("step %d: current %q not in store", i, snap.Current)
		}
	}
}

func TestUpdateContentRejectsInvalidUTF8(t *testing.T) {
	s := New()
	before := s.Serialize()

	if s.UpdateContent("main.js", "bad \xff\xfe bytes") {
		t.Error("UpdateContent with invalid UTF-8 should be a no-op")
	}
	if s.Serialize() != before {
		t.Error("store changed after rejected update")
	}

	s.UpdateContent("main.js", "héllo ✓ 日本")
	rec, _ := Restore(s.Serialize()).Get("main.js")
	if rec.Content != "héllo ✓ 日本" {
		t.Errorf("content after round trip = %q", rec.Content)
	}
}

func TestSerializeRoundTrip(t *testing.T) {
	s := New()
	s.Create("z.py")
	s.Create("a.json")
	s.UpdateContent("a.json", `{"k": "<v> & \"q\""}`)
	s.Delete("styles.css")

	restored := Restore(s.Serialize())

	if !reflect.DeepEqual(restored.Names(), s.Names()) {
		t.Errorf("names = %v, want %v", restored.Names(), s.Names())
	}
	if !reflect.DeepEqual(restored.Snapshot().Files, s.Snapshot().Files) {
		t.Error("records differ after round trip")
	}
}

func TestSerializeShape(t *testing.T) {
	s := New()
	for _, n := range s.Names()[1:] {
		s.Delete(n)
	}
	s.UpdateContent("main.js", "x")

	want := `{"main.js":{"content":"x","language":"javascript","kind":"file"}}`
	if got := s.Serialize(); got != want {
		t.Errorf("Serialize() = %s, want %s", got, want)
	}
}

func TestRestoreFallsBackToDefaults(t *testing.T) {
	defaults := New().Serialize()
	for _, blob := range []string{
		"",
		"   ",
		"null",
		"{}",
		"[1,2]",
		"{not json",
		`{"a.js": 5}`,
		`{"a.js": {"content": "x", "language": "javascript", "kind": "folder"}}`,
		`{"": {"content": "x", "language": "javascript", "kind": "file"}}`,
	} {
		if got := Restore(blob).Serialize(); got != defaults {
			t.Errorf("Restore(%q) did not fall back to defaults: %s", blob, got)
		}
	}
}

func TestRestoreLegacyShape(t *testing.T) {
	blob := `{"b.py":{"content":"print(1)","language":"python","type":"file"},"a.rb":{"content":"puts 1","language":"klingon"}}`
	s := Restore(blob)

	if got := s.Names(); !reflect.DeepEqual(got, []string{"b.py", "a.rb"}) {
		t.Fatalf("Names() = %v", got)
	}
	if s.Current() != "b.py" {
		t.Errorf("Current() = %q, want b.py", s.Current())
	}
	rec, _ := s.Get("a.rb")
	if rec.Language != language.Ruby || rec.Kind != KindFile {
		t.Errorf("a.rb = %+v, want re-resolved ruby file", rec)
	}
}

func TestOnChange(t *testing.T) {
	s := New()
	var blobs []string
	s.SetOnChange(func(blob string) { blobs = append(blobs, blob) })

	s.Create("n.py")    // applied
	s.Create("n.py")    // no-op
	s.Select("main.js") // selection is not persisted
	s.UpdateContent("n.py", "1")
	s.Delete("ghost") // no-op
	s.Delete("n.py")

	if len(blobs) != 3 {
		t.Fatalf("got %d change notifications, want 3", len(blobs))
	}
	if blobs[2] != s.Serialize() {
		t.Error("last blob should match current state")
	}
}

func TestSnapshotIsDetached(t *testing.T) {
	s := New()
	snap := s.Snapshot()
	s.UpdateContent("main.js", "changed")
	s.Create("new.js")

	if snap.CurrentRecord().Content == "changed" {
		t.Error("snapshot saw a later update")
	}
	if len(snap.Names) != 4 {
		t.Errorf("snapshot names = %v", snap.Names)
	}
}
