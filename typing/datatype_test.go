package typing

import "testing"

func TestDataTypeValid(t *testing.T) {
	if (DataType{}).Valid() {
		t.Error("zero-value DataType should be invalid")
	}
	if !(DataType{OwningModule: "lang", Name: "i32"}).Valid() {
		t.Error("DataType with owning module and name should be valid")
	}
}

func TestDataTypeEqualsIgnoresBackendHandle(t *testing.T) {
	a := DataType{OwningModule: "lang", Name: "i32", BackendType: 1}
	b := DataType{OwningModule: "lang", Name: "i32", BackendType: 2}
	if !a.Equals(b) {
		t.Error("DataTypes with equal qualified names should be equal regardless of backend handle")
	}
}

func TestDataTypeQualifiedName(t *testing.T) {
	dt := DataType{OwningModule: "app/shapes", Name: "circle"}
	if got := dt.QualifiedName(); got != "app/shapes:circle" {
		t.Errorf("QualifiedName() = %q, want %q", got, "app/shapes:circle")
	}
}

func TestEqualSlices(t *testing.T) {
	a := []NamedDataType{{Name: "x", Type: DataType{OwningModule: "lang", Name: "i32"}}}
	b := []NamedDataType{{Name: "x", Type: DataType{OwningModule: "lang", Name: "i32"}}}
	c := []NamedDataType{{Name: "y", Type: DataType{OwningModule: "lang", Name: "i32"}}}

	if !EqualSlices(a, b) {
		t.Error("identical slices should be equal")
	}
	if EqualSlices(a, c) {
		t.Error("slices differing by binding name should not be equal")
	}
	if EqualSlices(a, nil) {
		t.Error("slices of different length should not be equal")
	}
}
