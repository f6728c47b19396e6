package carcount

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestLoadClassNames(t *testing.T) {

	file := filepath.Join(t.TempDir(), "labels.txt")

	data := "person\nbicycle\ncar\n motorcycle \n"

	if err := os.WriteFile(file, []byte(data), 0644); err != nil {
		t.Fatalf("writing label file: %v", err)
	}

	names, err := LoadClassNames(file)

	if err != nil {
		t.Fatalf("LoadClassNames failed: %v", err)
	}

	want := []string{"person", "bicycle", "car", "motorcycle"}

	if !reflect.DeepEqual(names, want) {
		t.Errorf("LoadClassNames = %v, want %v", names, want)
	}
}

func TestLoadClassNamesMissingFile(t *testing.T) {

	if _, err := LoadClassNames("/does/not/exist.txt"); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestVehicleClasses(t *testing.T) {

	want := []int{2, 3, 5, 7}

	if got := VehicleClasses(); !reflect.DeepEqual(got, want) {
		t.Errorf("VehicleClasses = %v, want %v", got, want)
	}
}
