package dto

import (
	"testing"

	"github.com/gin-gonic/gin/binding"
	"github.com/stretchr/testify/assert"
)

// --- SanitizeStruct tests ---

func TestSanitizeStruct_TrimsWhitespace(t *testing.T) {
	reason := "  changed my mind \n"
	req := CreateRefundRequest{PaymentReference: "  ORDER-1  ", Reason: &reason}
	SanitizeStruct(&req)

	assert.Equal(t, "ORDER-1", req.PaymentReference)
	assert.Equal(t, "changed my mind", *req.Reason)
}

func TestSanitizeStruct_StripsControlCharacters(t *testing.T) {
	notes := "line one\x00\x1b[31m\nline two\ttabbed"
	req := ResolveRefundRequest{AdminNotes: &notes}
	SanitizeStruct(&req)

	assert.Equal(t, "line one[31m\nline two\ttabbed", *req.AdminNotes)
}

func TestSanitizeStruct_KeepsMarkupForRenderTimeEscaping(t *testing.T) {
	reason := "<b>bold</b>"
	req := CreateRefundRequest{PaymentReference: "ORDER-1", Reason: &reason}
	SanitizeStruct(&req)

	assert.Equal(t, "<b>bold</b>", *req.Reason)
}

func TestSanitizeStruct_NilPointerIsNoOp(t *testing.T) {
	req := CreateRefundRequest{PaymentReference: "ORDER-1"}
	SanitizeStruct(&req)
	assert.Nil(t, req.Reason)
}

func TestSanitizeStruct_NonPointerIsNoOp(t *testing.T) {
	req := CreateRefundRequest{PaymentReference: "  ORDER-1  "}
	SanitizeStruct(req)
	assert.Equal(t, "  ORDER-1  ", req.PaymentReference)
}

// --- Binding validation ---

func TestCreateRefundRequest_Validation(t *testing.T) {
	long := make([]byte, 2001)
	for i := range long {
		long[i] = 'a'
	}
	longReason := string(long)

	tests := []struct {
		name    string
		req     CreateRefundRequest
		wantErr bool
	}{
		{"valid", CreateRefundRequest{PaymentReference: "ORDER-2026_01.a~b"}, false},
		{"missing reference", CreateRefundRequest{}, true},
		{"unsafe reference", CreateRefundRequest{PaymentReference: "ORDER 1; DROP TABLE"}, true},
		{"reason too long", CreateRefundRequest{PaymentReference: "ORDER-1", Reason: &longReason}, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := binding.Validator.ValidateStruct(&tc.req)
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestResolveRefundRequest_ApproveRequired(t *testing.T) {
	assert.Error(t, binding.Validator.ValidateStruct(&ResolveRefundRequest{}))

	no := false
	assert.NoError(t, binding.Validator.ValidateStruct(&ResolveRefundRequest{Approve: &no}))
}
