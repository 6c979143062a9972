package validate

import "testing"

func TestScriptID(t *testing.T) {
	valid := []string{
		"1AbCdEfGhIjKlMnOpQrStUvWxYz0123456789_-abcdef",
		"abc123",
		"a",
	}
	for _, id := range valid {
		if err := ScriptID(id); err != nil {
			t.Errorf("ScriptID(%q) = %v, want nil", id, err)
		}
	}

	invalid := []string{
		"",
		"id with spaces",
		"id'or'1=1",
		"id/../../etc",
		"id\nnewline",
		string(make([]byte, 200)),
	}
	for _, id := range invalid {
		if err := ScriptID(id); err == nil {
			t.Errorf("ScriptID(%q) = nil, want error", id)
		}
	}
}

func TestFunctionName(t *testing.T) {
	valid := []string{"main", "doGet", "_private", "$helper", "fn2"}
	for _, name := range valid {
		if err := FunctionName(name); err != nil {
			t.Errorf("FunctionName(%q) = %v, want nil", name, err)
		}
	}

	invalid := []string{"", "2fast", "my func", "fn()", "a.b", "evil();x"}
	for _, name := range invalid {
		if err := FunctionName(name); err == nil {
			t.Errorf("FunctionName(%q) = nil, want error", name)
		}
	}
}

func TestFileName(t *testing.T) {
	valid := []string{"Code", "appsscript", "src/utils", "My Sheet Helper.v2"}
	for _, name := range valid {
		if err := FileName(name); err != nil {
			t.Errorf("FileName(%q) = %v, want nil", name, err)
		}
	}

	invalid := []string{"", "bad\nname", "name\x00null"}
	for _, name := range invalid {
		if err := FileName(name); err == nil {
			t.Errorf("FileName(%q) = nil, want error", name)
		}
	}
}

func TestPropertyKey(t *testing.T) {
	if err := PropertyKey("API_KEY"); err != nil {
		t.Errorf("PropertyKey = %v, want nil", err)
	}
	if err := PropertyKey("key with spaces and ünïcode"); err != nil {
		t.Errorf("PropertyKey = %v, want nil for permissive keys", err)
	}
	if err := PropertyKey(""); err == nil {
		t.Error("empty key accepted")
	}
	long := make([]byte, 501)
	for i := range long {
		long[i] = 'k'
	}
	if err := PropertyKey(string(long)); err == nil {
		t.Error("oversized key accepted")
	}
}
