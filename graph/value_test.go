package graph

import "testing"

func TestValueEqual(t *testing.T) {
	cases := []struct {
		name string
		a, b Value
		want bool
	}{
		{"equal floats", FloatValue(1.5), FloatValue(1.5), true},
		{"different floats", FloatValue(1.5), FloatValue(2.5), false},
		{"different kinds", IntValue(1), FloatValue(1), false},
		{"equal strings", StringValue("x"), StringValue("x"), true},
		{"equal blobs", BlobValue("t", []byte{1, 2}), BlobValue("t", []byte{1, 2}), true},
		{"different blob bytes", BlobValue("t", []byte{1, 2}), BlobValue("t", []byte{1, 3}), false},
		{"equal dicts", DictValue(map[string]Value{"a": IntValue(1)}), DictValue(map[string]Value{"a": IntValue(1)}), true},
		{"different dict size", DictValue(map[string]Value{"a": IntValue(1)}), DictValue(map[string]Value{}), false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := c.a.Equal(c.b); got != c.want {
				t.Errorf("Equal = %v, want %v", got, c.want)
			}
		})
	}
}

func TestPropertiesCloneIndependence(t *testing.T) {
	orig := Properties{"a": IntValue(1)}
	clone := orig.Clone()
	clone["a"] = IntValue(2)
	if orig["a"].Int != 1 {
		t.Fatalf("mutating clone affected original: %v", orig["a"])
	}
}

func TestPropertiesMerge(t *testing.T) {
	base := Properties{"a": IntValue(1), "b": IntValue(2)}
	merged := base.Merge(Properties{"b": IntValue(20), "c": IntValue(3)})

	if merged["a"].Int != 1 || merged["b"].Int != 20 || merged["c"].Int != 3 {
		t.Fatalf("unexpected merge result: %+v", merged)
	}
	if base["b"].Int != 2 {
		t.Fatalf("Merge mutated base: %+v", base)
	}
}

func TestPropertiesMergeNilBase(t *testing.T) {
	var base Properties
	merged := base.Merge(Properties{"a": IntValue(1)})
	if merged["a"].Int != 1 {
		t.Fatalf("Merge on nil base: %+v", merged)
	}
}
