package mpesa

import "testing"

func TestParseCallbackSuccess(t *testing.T) {
	body := []byte(`{
	  "Body": {
	    "stkCallback": {
	      "MerchantRequestID": "29115-34620561-1",
	      "CheckoutRequestID": "ws_CO_191220191020363925",
	      "ResultCode": 0,
	      "ResultDesc": "The service request is processed successfully.",
	      "CallbackMetadata": {
	        "Item": [
	          {"Name": "Amount", "Value": 1050.0},
	          {"Name": "MpesaReceiptNumber", "Value": "NLJ7RT61SV"},
	          {"Name": "TransactionDate", "Value": 20191219102115},
	          {"Name": "PhoneNumber", "Value": 254708374149}
	        ]
	      }
	    }
	  }
	}`)
	cb, err := ParseCallback(body)
	if err != nil {
		t.Fatalf("ParseCallback: %v", err)
	}
	if cb.CheckoutRequestID != "ws_CO_191220191020363925" {
		t.Fatalf("checkout id = %q", cb.CheckoutRequestID)
	}
	if cb.ResultCode != 0 || cb.Amount != 1050 || cb.Receipt != "NLJ7RT61SV" {
		t.Fatalf("callback fields wrong: %+v", cb)
	}
}

func TestParseCallbackDeclined(t *testing.T) {
	body := []byte(`{"Body":{"stkCallback":{"CheckoutRequestID":"ws_CO_1","ResultCode":1032,"ResultDesc":"Request cancelled by user"}}}`)
	cb, err := ParseCallback(body)
	if err != nil {
		t.Fatalf("ParseCallback: %v", err)
	}
	if cb.ResultCode != 1032 || cb.Receipt != "" {
		t.Fatalf("callback fields wrong: %+v", cb)
	}
}

func TestParseCallbackRejectsMissingID(t *testing.T) {
	if _, err := ParseCallback([]byte(`{"Body":{"stkCallback":{"ResultCode":0}}}`)); err == nil {
		t.Fatal("expected error for missing CheckoutRequestID")
	}
	if _, err := ParseCallback([]byte(`not json`)); err == nil {
		t.Fatal("expected error for malformed body")
	}
}

func TestNormalizeMSISDN(t *testing.T) {
	cases := map[string]string{
		"0712345678":     "254712345678",
		"+254712345678":  "254712345678",
		"254 712 345678": "254712345678",
		"712345":         "",
		"07123456ab":     "",
	}
	for in, want := range cases {
		if got := normalizeMSISDN(in); got != want {
			t.Fatalf("normalizeMSISDN(%q) = %q, want %q", in, got, want)
		}
	}
}
