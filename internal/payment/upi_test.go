package payment

import (
	"net/url"
	"testing"
)

func TestIntentURI(t *testing.T) {
	p := Payee{VPA: "restaurant@upi", Name: "Restaurant", Currency: "INR"}
	got := IntentURI(p, 65)
	want := "upi://pay?pa=restaurant%40upi&pn=Restaurant&am=65&cu=INR"
	if got != want {
		t.Fatalf("IntentURI = %q, want %q", got, want)
	}

	spaced := IntentURI(Payee{VPA: "a@b", Name: "Tiffin Room", Currency: "INR"}, 5)
	u, err := url.Parse(spaced)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if u.Query().Get("pn") != "Tiffin Room" {
		t.Fatalf("pn = %q", u.Query().Get("pn"))
	}
}

func TestQRImageURL(t *testing.T) {
	data := "upi://pay?pa=restaurant%40upi&am=65"
	got, err := QRImageURL("https://api.qrserver.com/v1/create-qr-code/", 0, data)
	if err != nil {
		t.Fatalf("qr url: %v", err)
	}
	u, err := url.Parse(got)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if u.Host != "api.qrserver.com" || u.Path != "/v1/create-qr-code/" {
		t.Fatalf("url = %s", got)
	}
	if u.Query().Get("size") != "200x200" {
		t.Fatalf("size = %q", u.Query().Get("size"))
	}
	if u.Query().Get("data") != data {
		t.Fatalf("data = %q, want %q", u.Query().Get("data"), data)
	}

	if _, err := QRImageURL("not a url", 200, data); err == nil {
		t.Fatal("expected error for relative service url")
	}
}
