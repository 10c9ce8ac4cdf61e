package codec

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

type account struct {
	ID      string            `json:"id" msgpack:"id" cbor:"id"`
	Balance int64             `json:"balance" msgpack:"balance" cbor:"balance"`
	Tags    map[string]string `json:"tags" msgpack:"tags" cbor:"tags"`
	Opened  time.Time         `json:"opened" msgpack:"opened" cbor:"opened"`
}

func sampleAccount() account {
	return account{
		ID:      "a-1",
		Balance: 4200,
		Tags:    map[string]string{"tier": "gold", "region": "eu"},
		Opened:  time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
}

func mustCBOR[V any](deterministic bool) CBOR[V] {
	c, err := NewCBOR[V](deterministic)
	if err != nil {
		panic(err)
	}
	return c
}

func TestStructCodecs(t *testing.T) {
	codecs := map[string]Codec[account]{
		"json":     JSON[account]{},
		"msgpack":  Msgpack[account]{},
		"cbor":     mustCBOR[account](false),
		"cbor-det": mustCBOR[account](true),
	}
	want := sampleAccount()
	for name, cc := range codecs {
		b, err := cc.Encode(want)
		if err != nil {
			t.Fatalf("%s encode: %v", name, err)
		}
		got, err := cc.Decode(b)
		if err != nil {
			t.Fatalf("%s decode: %v", name, err)
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Fatalf("%s mismatch (-want +got):\n%s", name, diff)
		}
	}
}

func TestDeterministicEncodings(t *testing.T) {
	v := sampleAccount()
	for name, cc := range map[string]Codec[account]{
		"msgpack":  Msgpack[account]{},
		"cbor-det": mustCBOR[account](true),
	} {
		first, err := cc.Encode(v)
		if err != nil {
			t.Fatal(err)
		}
		for i := 0; i < 20; i++ {
			again, _ := cc.Encode(v)
			if string(again) != string(first) {
				t.Fatalf("%s: encoding not stable across calls", name)
			}
		}
	}
}

func TestProtobuf(t *testing.T) {
	cc := NewProtobuf(func() *wrapperspb.StringValue { return &wrapperspb.StringValue{} })
	b, err := cc.Encode(wrapperspb.String("hello"))
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := cc.Decode(b)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !proto.Equal(got, wrapperspb.String("hello")) {
		t.Fatalf("got %v", got)
	}
}

func TestLimitCodec(t *testing.T) {
	cc := LimitCodec[string]{Inner: String{}, MaxDecode: 4}
	if _, err := cc.Decode([]byte("12345")); !errors.Is(err, ErrTooLarge) {
		t.Fatalf("expected ErrTooLarge, got %v", err)
	}
	if v, err := cc.Decode([]byte("1234")); err != nil || v != "1234" {
		t.Fatalf("Decode=(%q,%v)", v, err)
	}
	enc := LimitCodec[string]{Inner: String{}, MaxEncode: 2}
	if _, err := enc.Encode("abc"); !errors.Is(err, ErrTooLarge) {
		t.Fatalf("expected ErrTooLarge on encode, got %v", err)
	}
	if b, err := enc.Encode("ab"); err != nil || string(b) != "ab" {
		t.Fatalf("Encode=(%q,%v)", b, err)
	}
	unlimited := LimitCodec[string]{Inner: String{}}
	if _, err := unlimited.Decode(make([]byte, 1<<20)); err != nil {
		t.Fatalf("unlimited decode: %v", err)
	}
}

func TestStringRejectsInvalidUTF8(t *testing.T) {
	if _, err := (String{}).Decode([]byte{0xff, 0xfe}); !errors.Is(err, ErrInvalidUTF8) {
		t.Fatalf("expected ErrInvalidUTF8, got %v", err)
	}
}

func TestBytesDecodeCopies(t *testing.T) {
	src := []byte("abc")
	out, _ := Bytes{}.Decode(src)
	src[0] = 'x'
	if string(out) != "abc" {
		t.Fatalf("decoded slice aliases input: %q", out)
	}
}

func TestCBORRejectsDuplicateKeys(t *testing.T) {
	cc := mustCBOR[map[string]int](false)
	// {"a": 1, "a": 2}
	dup := []byte{0xa2, 0x61, 'a', 0x01, 0x61, 'a', 0x02}
	if _, err := cc.Decode(dup); err == nil {
		t.Fatal("duplicate map key accepted")
	}
}

func TestProtobufWithoutConstructor(t *testing.T) {
	var cc Protobuf[*wrapperspb.StringValue]
	if _, err := cc.Decode(nil); err == nil {
		t.Fatal("expected error without constructor")
	}
}

func TestByName(t *testing.T) {
	for _, name := range []string{"json", "msgpack", "cbor", "cbor-det", "string"} {
		cc, err := ByName[string](name)
		if err != nil {
			t.Fatalf("ByName(%q): %v", name, err)
		}
		b, err := cc.Encode("value")
		if err != nil {
			t.Fatalf("%s encode: %v", name, err)
		}
		if v, err := cc.Decode(b); err != nil || v != "value" {
			t.Fatalf("%s decode=(%q,%v)", name, v, err)
		}
	}
	if _, err := ByName[[]byte]("bytes"); err != nil {
		t.Fatalf("bytes codec for []byte: %v", err)
	}
	if _, err := ByName[int]("string"); err == nil {
		t.Fatal("string codec must not apply to int")
	}
	if _, err := ByName[string]("yaml"); err == nil {
		t.Fatal("unknown codec accepted")
	}
}
