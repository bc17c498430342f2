package fixfield

import (
	"testing"
	"time"

	"github.com/govalues/decimal"
)

func TestBooleanRoundTrip(t *testing.T) {
	if got := SerializeBoolean(true, nil); string(got) != "Y" {
		t.Fatalf("SerializeBoolean(true) = %q, want Y", got)
	}
	if got := SerializeBoolean(false, nil); string(got) != "N" {
		t.Fatalf("SerializeBoolean(false) = %q, want N", got)
	}

	v, err := DeserializeBoolean([]byte("Y"))
	if err != nil || v != true {
		t.Fatalf("DeserializeBoolean(Y) = %v, %v, want true, nil", v, err)
	}
	if _, err := DeserializeBoolean([]byte("X")); err == nil {
		t.Fatal("DeserializeBoolean should reject anything but Y/N")
	}
	if _, err := DeserializeBoolean([]byte("YY")); err == nil {
		t.Fatal("DeserializeBoolean should reject multi-byte input")
	}
}

func TestIntRoundTrip(t *testing.T) {
	buf := SerializeInt(-42, nil)
	if string(buf) != "-42" {
		t.Fatalf("SerializeInt(-42) = %q", buf)
	}
	n, err := DeserializeInt(buf)
	if err != nil || n != -42 {
		t.Fatalf("DeserializeInt = %d, %v, want -42, nil", n, err)
	}
	if _, err := DeserializeInt(nil); err != ErrEmptyField {
		t.Fatalf("DeserializeInt(nil) = %v, want ErrEmptyField", err)
	}
}

func TestDeserializeIntLossyIgnoresNonDigits(t *testing.T) {
	n, err := DeserializeIntLossy([]byte("1a2b3"))
	if err != nil {
		t.Fatalf("DeserializeIntLossy: %v", err)
	}
	if n != 123 {
		t.Fatalf("DeserializeIntLossy(1a2b3) = %d, want 123", n)
	}
}

func TestDecimalRoundTrip(t *testing.T) {
	d, err := decimal.Parse("123.45")
	if err != nil {
		t.Fatalf("decimal.Parse: %v", err)
	}
	buf := SerializeDecimal(d, nil)

	got, err := DeserializeDecimal(buf)
	if err != nil {
		t.Fatalf("DeserializeDecimal: %v", err)
	}
	if got.String() != "123.45" {
		t.Fatalf("DeserializeDecimal round-trip = %s, want 123.45", got.String())
	}
}

func TestCurrencyRejectsWrongLength(t *testing.T) {
	if _, err := DeserializeCurrency([]byte("US")); err == nil {
		t.Fatal("DeserializeCurrency should reject a 2-letter code")
	}
	v, err := DeserializeCurrency([]byte("USD"))
	if err != nil || v != "USD" {
		t.Fatalf("DeserializeCurrency(USD) = %q, %v", v, err)
	}
}

func TestTimestampRoundTrip(t *testing.T) {
	in := time.Date(2026, 7, 30, 14, 5, 9, 0, time.UTC)
	buf := SerializeTimestamp(in, nil)
	if string(buf) != "20260730-14:05:09" {
		t.Fatalf("SerializeTimestamp = %q", buf)
	}

	out, err := DeserializeTimestamp(buf)
	if err != nil {
		t.Fatalf("DeserializeTimestamp: %v", err)
	}
	if !out.Equal(in) {
		t.Fatalf("DeserializeTimestamp = %v, want %v", out, in)
	}
}

func TestTimestampMissingSeparator(t *testing.T) {
	if _, err := DeserializeTimestamp([]byte("20260730140509")); err == nil {
		t.Fatal("DeserializeTimestamp should reject input with no date-time separator")
	}
}

func TestEnumKnownAndOther(t *testing.T) {
	e := NewEnum("1", "2", "3")

	v := e.Deserialize([]byte("2"))
	if v.Other || v.Code != "2" {
		t.Fatalf("Deserialize(2) = %+v, want known code 2", v)
	}

	v = e.Deserialize([]byte("9"))
	if !v.Other || v.Code != "9" {
		t.Fatalf("Deserialize(9) = %+v, want Other with code 9", v)
	}
}

func TestBytesCopiesInput(t *testing.T) {
	src := []byte("payload")
	out, err := DeserializeBytes(src)
	if err != nil {
		t.Fatalf("DeserializeBytes: %v", err)
	}
	src[0] = 'X'
	if string(out) != "payload" {
		t.Fatalf("DeserializeBytes aliased the input buffer: %q", out)
	}
}
