package httpx

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"orange-brew/internal/apperr"
	"orange-brew/internal/orders"
)

func TestParsePlaceOrderJSON(t *testing.T) {
	body := `{"order_type":"PICKUP","payment_method":"CASH","items":[{"product_id":1,"quantity":2}]}`
	req := httptest.NewRequest(http.MethodPost, "/api/orders", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	in, err := parsePlaceOrder(httptest.NewRecorder(), req)
	if err != nil {
		t.Fatalf("parsePlaceOrder: %v", err)
	}
	if in.OrderType != orders.TypePickup || in.PaymentMethod != orders.MethodCash {
		t.Fatalf("parsed %+v", in)
	}
	if len(in.Items) != 1 || in.Items[0].ProductID != 1 || in.Items[0].Quantity != 2 {
		t.Fatalf("items = %+v", in.Items)
	}
	if in.Receipt != nil {
		t.Fatal("json body should carry no receipt")
	}
}

func TestParsePlaceOrderJSONBodyCapped(t *testing.T) {
	var b strings.Builder
	b.WriteString(`{"order_type":"PICKUP","items":[`)
	for i := 0; b.Len() < maxOrderJSONBytes+1024; i++ {
		if i > 0 {
			b.WriteString(",")
		}
		fmt.Fprintf(&b, `{"product_id":%d,"quantity":1}`, i+1)
	}
	b.WriteString(`]}`)

	req := httptest.NewRequest(http.MethodPost, "/api/orders", strings.NewReader(b.String()))
	req.Header.Set("Content-Type", "application/json")

	_, err := parsePlaceOrder(httptest.NewRecorder(), req)
	if apperr.KindOf(err) != apperr.KindValidation {
		t.Fatalf("err = %v, want validation for oversized body", err)
	}
}

func TestParsePlaceOrderMultipart(t *testing.T) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	_ = mw.WriteField("orderType", "DELIVERY")
	_ = mw.WriteField("paymentMethod", "TRANSFER")
	_ = mw.WriteField("items", `[{"product_id":3,"quantity":1}]`)
	fw, err := mw.CreateFormFile("receipt", "proof.jpg")
	if err != nil {
		t.Fatalf("CreateFormFile: %v", err)
	}
	_, _ = fw.Write([]byte("jpg-bytes"))
	_ = mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/orders", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	in, err := parsePlaceOrder(httptest.NewRecorder(), req)
	if err != nil {
		t.Fatalf("parsePlaceOrder: %v", err)
	}
	if in.OrderType != orders.TypeDelivery || in.PaymentMethod != orders.MethodTransfer {
		t.Fatalf("parsed %+v", in)
	}
	if in.Receipt == nil || in.ReceiptName != "proof.jpg" {
		t.Fatalf("receipt = %v name = %q", in.Receipt, in.ReceiptName)
	}
}

func TestParsePlaceOrderMultipartBadItems(t *testing.T) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	_ = mw.WriteField("orderType", "DINE_IN")
	_ = mw.WriteField("items", `not-json`)
	_ = mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/orders", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	_, err := parsePlaceOrder(httptest.NewRecorder(), req)
	if apperr.KindOf(err) != apperr.KindValidation {
		t.Fatalf("err = %v, want validation", err)
	}
}
