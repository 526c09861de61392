package lspbuffer

import (
	"reflect"
	"testing"
)

func TestTryExtractHeader_NotYetComplete(t *testing.T) {
	b := New()
	b.Append([]byte("Content-Length: 30\r\n\r"))
	header, ok, err := b.TryExtractHeader()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatalf("expected not-yet-complete, got header=%v", header)
	}
}

func TestTryExtractHeader_SeparatorStraddlesAppends(t *testing.T) {
	b := New()
	b.Append([]byte("Content-Length: 30\r\n\r"))
	b.Append([]byte("\n"))
	header, ok, err := b.TryExtractHeader()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Fatal("expected header complete after remaining bytes arrive")
	}
	want := map[string]string{"Content-Length": "30"}
	if !reflect.DeepEqual(header, want) {
		t.Errorf("header = %v, want %v", header, want)
	}
}

func TestTryExtractHeader_MultipleFields(t *testing.T) {
	b := New()
	b.Append([]byte("Content-Length: 21\r\nContent-Type: application/vscode-jsonrpc; charset=utf-8\r\n\r\n"))
	header, ok, err := b.TryExtractHeader()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Fatal("expected header complete")
	}
	want := map[string]string{
		"Content-Length": "21",
		"Content-Type":   "application/vscode-jsonrpc; charset=utf-8",
	}
	if !reflect.DeepEqual(header, want) {
		t.Errorf("header = %v, want %v", header, want)
	}
}

func TestTryExtractHeader_IsIdempotent(t *testing.T) {
	b := New()
	b.Append([]byte("Content-Length: 5\r\n\r\nhello"))
	h1, ok1, err := b.TryExtractHeader()
	if err != nil || !ok1 {
		t.Fatalf("first extract failed: ok=%v err=%v", ok1, err)
	}
	h2, ok2, err := b.TryExtractHeader()
	if err != nil || !ok2 {
		t.Fatalf("second extract failed: ok=%v err=%v", ok2, err)
	}
	if !reflect.DeepEqual(h1, h2) {
		t.Errorf("repeat call returned different header: %v vs %v", h1, h2)
	}
}

func TestTryExtractHeader_OnlyFirstSeparatorMatters(t *testing.T) {
	b := New()
	// a body that itself happens to contain "\r\n\r\n" must not confuse
	// header extraction: only the first occurrence delimits the header.
	b.Append([]byte("Content-Length: 8\r\n\r\nab\r\n\r\ncd"))
	header, ok, err := b.TryExtractHeader()
	if err != nil || !ok {
		t.Fatalf("extract failed: ok=%v err=%v", ok, err)
	}
	if header["Content-Length"] != "8" {
		t.Errorf("header = %v", header)
	}
	data, ok, err := b.TryExtractData()
	if err != nil || !ok {
		t.Fatalf("extract data failed: ok=%v err=%v", ok, err)
	}
	if string(data) != "ab\r\n\r\ncd" {
		t.Errorf("data = %q, want %q", data, "ab\r\n\r\ncd")
	}
}

func TestTryExtractHeader_MalformedLineFails(t *testing.T) {
	b := New()
	b.Append([]byte("NotAValidHeaderLine\r\n\r\n"))
	_, _, err := b.TryExtractHeader()
	if err == nil {
		t.Fatal("expected malformed header error")
	}
}

func TestTryExtractData_BeforeHeaderFails(t *testing.T) {
	b := New()
	b.Append([]byte("no header yet"))
	_, _, err := b.TryExtractData()
	if err == nil {
		t.Fatal("expected error calling try_extract_data before header extracted")
	}
}

func TestTryExtractData_IncrementalChunks(t *testing.T) {
	b := New()
	b.Append([]byte("Content-Length: 30\r\n\r\n"))
	if _, ok, err := b.TryExtractHeader(); err != nil || !ok {
		t.Fatalf("header extract failed: ok=%v err=%v", ok, err)
	}

	// no data yet
	data, ok, err := b.TryExtractData()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatalf("expected no data yet, got %q", data)
	}

	b.Append([]byte("0123456789"))
	data, ok, err = b.TryExtractData()
	if err != nil || !ok {
		t.Fatalf("extract failed: ok=%v err=%v", ok, err)
	}
	if string(data) != "0123456789" {
		t.Errorf("data = %q", data)
	}

	// nothing new since last call
	_, ok, err = b.TryExtractData()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatal("expected no new data")
	}

	b.Append([]byte("abcdefghijklmnopqrstuvwxyz0123"))
	data, ok, err = b.TryExtractData()
	if err != nil || !ok {
		t.Fatalf("extract failed: ok=%v err=%v", ok, err)
	}
	if string(data) != "abcdefghijklmnopqrstuvwxyz0123" {
		t.Errorf("data = %q", data)
	}
}

func TestClearResetsBuffer(t *testing.T) {
	b := New()
	b.Append([]byte("Content-Length: 2\r\n\r\nhi"))
	_, _, _ = b.TryExtractHeader()
	_, _, _ = b.TryExtractData()
	b.Clear()
	if b.HeaderSeen() || b.HeaderBytes() != nil {
		t.Fatal("Clear did not reset header state")
	}
	_, ok, err := b.TryExtractHeader()
	if err != nil || ok {
		t.Fatalf("expected no header after clear, got ok=%v err=%v", ok, err)
	}
}

// TestEveryByteSplitYieldsSameHeader asserts that for all byte splits of
// a framed header, feeding the pieces in order yields the same parsed
// header as feeding it whole.
func TestEveryByteSplitYieldsSameHeader(t *testing.T) {
	whole := []byte("Content-Length: 13\r\nContent-Type: text/plain\r\n\r\nHello, world!")
	want := map[string]string{"Content-Length": "13", "Content-Type": "text/plain"}

	for splitAt := 0; splitAt <= len(whole); splitAt++ {
		b := New()
		b.Append(whole[:splitAt])
		b.Append(whole[splitAt:])
		header, ok, err := b.TryExtractHeader()
		if err != nil {
			t.Fatalf("splitAt=%d: unexpected error: %v", splitAt, err)
		}
		if !ok {
			t.Fatalf("splitAt=%d: expected header complete", splitAt)
		}
		if !reflect.DeepEqual(header, want) {
			t.Fatalf("splitAt=%d: header = %v, want %v", splitAt, header, want)
		}
	}
}
