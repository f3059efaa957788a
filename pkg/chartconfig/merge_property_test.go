package chartconfig

import (
	"reflect"
	"testing"

	"gopkg.in/yaml.v3"
	"pgregory.net/rapid"
)

// keyGen draws mapping keys that stay clear of the two keywords with special
// merge behavior.
var keyGen = rapid.StringMatching(`[a-z][a-z0-9_]{0,7}`).Filter(func(s string) bool {
	return s != layersKey && s != baseKey
})

func drawValue(t *rapid.T, label string) any {
	switch rapid.IntRange(0, 2).Draw(t, label+"_kind") {
	case 0:
		return rapid.IntRange(-1000, 1000).Draw(t, label+"_int")
	case 1:
		return rapid.StringMatching(`[a-zA-Z0-9 ]{0,12}`).Draw(t, label+"_str")
	default:
		n := rapid.IntRange(0, 3).Draw(t, label+"_len")
		seq := make([]any, n)
		for i := range seq {
			seq[i] = rapid.IntRange(-1000, 1000).Draw(t, label+"_item")
		}
		return seq
	}
}

func docFromMap(t *rapid.T, m map[string]any) *Document {
	data, err := yaml.Marshal(m)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	doc, err := Parse(data)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	return doc
}

func TestMergeUnionProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		keys := rapid.SliceOfNDistinct(keyGen, 0, 8, rapid.ID[string]).Draw(t, "keys")
		cut := rapid.IntRange(0, len(keys)).Draw(t, "cut")

		currentMap := map[string]any{}
		for _, k := range keys[:cut] {
			currentMap[k] = drawValue(t, "cur_"+k)
		}
		targetMap := map[string]any{}
		for _, k := range keys[cut:] {
			targetMap[k] = drawValue(t, "tgt_"+k)
		}

		merged, err := Merge(docFromMap(t, currentMap), docFromMap(t, targetMap))
		if err != nil {
			t.Fatalf("merge of disjoint documents failed: %v", err)
		}

		var got map[string]any
		if err := merged.Decode(&got); err != nil {
			t.Fatalf("decode failed: %v", err)
		}
		if got == nil {
			got = map[string]any{}
		}

		want := map[string]any{}
		for k, v := range targetMap {
			want[k] = v
		}
		for k, v := range currentMap {
			want[k] = v
		}
		if !reflect.DeepEqual(got, want) {
			t.Fatalf("expected union %v, got %v", want, got)
		}
	})
}

func TestMergeChildWinsProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		keys := rapid.SliceOfNDistinct(keyGen, 1, 6, rapid.ID[string]).Draw(t, "keys")

		currentMap := map[string]any{}
		targetMap := map[string]any{}
		for _, k := range keys {
			currentMap[k] = rapid.IntRange(-1000, 1000).Draw(t, "cur_"+k)
			targetMap[k] = rapid.StringMatching(`[a-z]{1,8}`).Draw(t, "tgt_"+k)
		}

		merged, err := Merge(docFromMap(t, currentMap), docFromMap(t, targetMap))
		if err != nil {
			t.Fatalf("merge failed: %v", err)
		}

		var got map[string]any
		if err := merged.Decode(&got); err != nil {
			t.Fatalf("decode failed: %v", err)
		}
		for _, k := range keys {
			if got[k] != currentMap[k] {
				t.Fatalf("expected child value %v for %s, got %v", currentMap[k], k, got[k])
			}
		}
	})
}

func TestMergeNeverMutatesInputsProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		keys := rapid.SliceOfNDistinct(keyGen, 0, 6, rapid.ID[string]).Draw(t, "keys")

		currentMap := map[string]any{}
		targetMap := map[string]any{}
		for _, k := range keys {
			if rapid.Bool().Draw(t, "inCur_"+k) {
				currentMap[k] = drawValue(t, "cur_"+k)
			}
			if rapid.Bool().Draw(t, "inTgt_"+k) {
				targetMap[k] = drawValue(t, "tgt_"+k)
			}
		}

		current := docFromMap(t, currentMap)
		target := docFromMap(t, targetMap)
		curBefore, _ := current.Bytes()
		tgtBefore, _ := target.Bytes()

		// Shape conflicts are allowed here; purity must hold either way.
		_, _ = Merge(current, target)

		curAfter, _ := current.Bytes()
		tgtAfter, _ := target.Bytes()
		if string(curBefore) != string(curAfter) {
			t.Fatalf("merge mutated the child document")
		}
		if string(tgtBefore) != string(tgtAfter) {
			t.Fatalf("merge mutated the base document")
		}
	})
}
