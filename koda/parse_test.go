package koda

import "testing"

func TestParse_ImplicitRootObject(t *testing.T) {
	v, err := Parse(`name: "my-app" version: 1 enabled: true`)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	want := Object(
		Field("name", String("my-app")),
		Field("version", Int(1)),
		Field("enabled", Bool(true)),
	)
	if !v.Equal(want) {
		t.Errorf("got %+v, want %+v", v, want)
	}
}

func TestParse_BracedObject(t *testing.T) {
	v, err := Parse(`{a: 1, b: 2}`)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	want := Object(Field("a", Int(1)), Field("b", Int(2)))
	if !v.Equal(want) {
		t.Errorf("got %+v, want %+v", v, want)
	}
}

func TestParse_ArrayRoot(t *testing.T) {
	v, err := Parse(`[1 2 3]`)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	want := Array(Int(1), Int(2), Int(3))
	if !v.Equal(want) {
		t.Errorf("got %+v, want %+v", v, want)
	}
}

func TestParse_OptionalSeparators(t *testing.T) {
	v, err := Parse(`"x": [1, 2, 3]`)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	want := Object(Field("x", Array(Int(1), Int(2), Int(3))))
	if !v.Equal(want) {
		t.Errorf("got %+v, want %+v", v, want)
	}
}

func TestParse_BareIdentifierValue(t *testing.T) {
	v, err := Parse(`status: active`)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	want := Object(Field("status", String("active")))
	if !v.Equal(want) {
		t.Errorf("got %+v, want %+v", v, want)
	}
}

func TestParse_DuplicateKeyRejected(t *testing.T) {
	_, err := Parse(`{"k": 1, "k": 2}`)
	assertParseErrorMessage(t, err, msgDuplicateKey)
}

func TestParse_NestedComments(t *testing.T) {
	v, err := Parse("{a: /* nested /* comment */ here */ 1}")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	want := Object(Field("a", Int(1)))
	if !v.Equal(want) {
		t.Errorf("got %+v, want %+v", v, want)
	}
}

func TestParse_MaxDepthExceeded(t *testing.T) {
	input := ""
	for i := 0; i < 300; i++ {
		input += "["
	}
	_, err := ParseWithOptions(input, DefaultParseOptions())
	assertParseErrorMessage(t, err, msgMaxDepthExceeded)
}

func TestParse_LeadingZero(t *testing.T) {
	_, err := Parse("01")
	assertParseErrorMessage(t, err, msgInvalidNumberLeadZero)
}

func TestParse_InputExceedsMaxLength(t *testing.T) {
	big := make([]byte, 10)
	for i := range big {
		big[i] = '1'
	}
	_, err := ParseWithOptions(string(big), ParseOptions{MaxInputLength: 5})
	assertParseErrorMessage(t, err, msgInputExceedsMaxLen)
}

func TestParse_EmptyInputRejected(t *testing.T) {
	_, err := Parse("")
	assertParseErrorMessage(t, err, msgExpected("value"))
}

func TestParse_SingleIdentifierIsStringValue(t *testing.T) {
	v, err := Parse("active")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if !v.Equal(String("active")) {
		t.Errorf("got %+v, want string active", v)
	}
}

func TestParse_TrailingGarbageRejected(t *testing.T) {
	_, err := Parse(`{a: 1} garbage`)
	assertParseErrorMessage(t, err, msgExpected("end of input"))
}

func TestParse_RootPairsTakeNoCommas(t *testing.T) {
	// Commas separate members only inside braces; the implicit root
	// object is whitespace-separated pairs.
	_, err := Parse(`a: 1, b: 2`)
	assertParseErrorMessage(t, err, msgExpected("end of input"))
}

func TestParse_DuplicateKeyAtRoot(t *testing.T) {
	_, err := Parse(`k: 1 k: 2`)
	assertParseErrorMessage(t, err, msgDuplicateKey)
}

func TestParse_DepthPositionAtOffendingBracket(t *testing.T) {
	_, err := ParseWithOptions("[[[[[", ParseOptions{MaxDepth: 2})
	if err == nil {
		t.Fatal("expected depth error")
	}
	pe, ok := err.(*ParseError)
	if !ok {
		t.Fatalf("expected *ParseError, got %T", err)
	}
	if pe.Message != msgMaxDepthExceeded {
		t.Errorf("expected depth message, got %q", pe.Message)
	}
	if pe.Pos.Offset != 3 {
		t.Errorf("expected error at the fourth bracket (offset 3), got %+v", pe.Pos)
	}
}
