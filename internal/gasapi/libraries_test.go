package gasapi

import (
	"encoding/json"
	"testing"
)

const sampleManifest = `{
  "timeZone": "Europe/Amsterdam",
  "runtimeVersion": "V8",
  "exceptionLogging": "STACKDRIVER",
  "dependencies": {
    "enabledAdvancedServices": [{"userSymbol": "Drive", "serviceId": "drive", "version": "v3"}],
    "libraries": [
      {"userSymbol": "Underscore", "libraryId": "lib-id-1", "version": "12"}
    ]
  }
}`

func TestManifestListLibraries(t *testing.T) {
	m, err := parseManifest(sampleManifest)
	if err != nil {
		t.Fatalf("parseManifest: %v", err)
	}
	libs, err := m.libraries()
	if err != nil {
		t.Fatalf("libraries: %v", err)
	}
	if len(libs) != 1 {
		t.Fatalf("len = %d, want 1", len(libs))
	}
	if libs[0].UserSymbol != "Underscore" || libs[0].LibraryID != "lib-id-1" || libs[0].Version != "12" {
		t.Errorf("unexpected library: %+v", libs[0])
	}
}

func TestManifestNoDependencies(t *testing.T) {
	m, err := parseManifest(`{"timeZone": "UTC"}`)
	if err != nil {
		t.Fatalf("parseManifest: %v", err)
	}
	libs, err := m.libraries()
	if err != nil {
		t.Fatalf("libraries: %v", err)
	}
	if len(libs) != 0 {
		t.Errorf("len = %d, want 0", len(libs))
	}
}

func TestManifestMalformed(t *testing.T) {
	if _, err := parseManifest("{not json"); err == nil {
		t.Fatal("expected error for malformed manifest")
	}
}

func TestManifestSetLibrariesPreservesUnknownKeys(t *testing.T) {
	m, err := parseManifest(sampleManifest)
	if err != nil {
		t.Fatalf("parseManifest: %v", err)
	}

	libs, _ := m.libraries()
	libs = append(libs, Library{UserSymbol: "Moment", LibraryID: "lib-id-2", Version: "3"})
	if err := m.setLibraries(libs); err != nil {
		t.Fatalf("setLibraries: %v", err)
	}

	serialized, err := m.serialize()
	if err != nil {
		t.Fatalf("serialize: %v", err)
	}

	var root map[string]json.RawMessage
	if err := json.Unmarshal([]byte(serialized), &root); err != nil {
		t.Fatalf("serialized manifest not JSON: %v", err)
	}

	// Top-level settings survive.
	for _, key := range []string{"timeZone", "runtimeVersion", "exceptionLogging"} {
		if _, ok := root[key]; !ok {
			t.Errorf("manifest key %q lost on round trip", key)
		}
	}

	// Sibling dependency sections survive.
	var deps map[string]json.RawMessage
	if err := json.Unmarshal(root["dependencies"], &deps); err != nil {
		t.Fatalf("dependencies not JSON: %v", err)
	}
	if _, ok := deps["enabledAdvancedServices"]; !ok {
		t.Error("enabledAdvancedServices lost on round trip")
	}

	var outLibs []Library
	if err := json.Unmarshal(deps["libraries"], &outLibs); err != nil {
		t.Fatalf("libraries not JSON: %v", err)
	}
	if len(outLibs) != 2 {
		t.Errorf("len = %d, want 2", len(outLibs))
	}
}

func TestManifestRemoveAllLibraries(t *testing.T) {
	m, err := parseManifest(sampleManifest)
	if err != nil {
		t.Fatalf("parseManifest: %v", err)
	}
	if err := m.setLibraries(nil); err != nil {
		t.Fatalf("setLibraries: %v", err)
	}

	serialized, _ := m.serialize()
	var root map[string]json.RawMessage
	if err := json.Unmarshal([]byte(serialized), &root); err != nil {
		t.Fatalf("serialized manifest not JSON: %v", err)
	}
	var deps map[string]json.RawMessage
	if err := json.Unmarshal(root["dependencies"], &deps); err != nil {
		t.Fatalf("dependencies not JSON: %v", err)
	}
	if _, ok := deps["libraries"]; ok {
		t.Error("empty libraries key not removed")
	}
	if _, ok := deps["enabledAdvancedServices"]; !ok {
		t.Error("sibling dependency section dropped")
	}
}

func TestFindManifest(t *testing.T) {
	if _, ok := findManifest(sampleFiles()); !ok {
		t.Error("manifest not found in sample files")
	}
	if _, ok := findManifest([]File{{Name: "main"}}); ok {
		t.Error("manifest found where none exists")
	}
}
