package click

import (
	"encoding/json"
	"mime"
	"net/url"
	"strconv"
	"strings"

	"payhook/internal/usecase/webhook"
)

// Actions multiplexed on the single Click endpoint.
const (
	ActionPrepare  = 0
	ActionComplete = 1
)

type request struct {
	ClickTransID      webhook.FlexString `json:"click_trans_id"`
	ServiceID         webhook.FlexString `json:"service_id"`
	ClickPaydocID     webhook.FlexString `json:"click_paydoc_id"`
	MerchantTransID   webhook.FlexString `json:"merchant_trans_id"`
	MerchantPrepareID webhook.FlexString `json:"merchant_prepare_id"`
	Amount            json.Number        `json:"amount"`
	Action            webhook.FlexString `json:"action"`
	Error             webhook.FlexString `json:"error"`
	ErrorNote         string             `json:"error_note"`
	SignTime          string             `json:"sign_time"`
	SignString        string             `json:"sign_string"`

	action    int
	errorCode int
}

type response struct {
	ClickTransID      string `json:"click_trans_id,omitempty"`
	MerchantTransID   string `json:"merchant_trans_id,omitempty"`
	MerchantPrepareID string `json:"merchant_prepare_id,omitempty"`
	MerchantConfirmID string `json:"merchant_confirm_id,omitempty"`
	Error             int    `json:"error"`
	ErrorNote         string `json:"error_note"`
}

// decodeRequest accepts both the form-encoded body Click posts and a JSON body.
func decodeRequest(contentType string, body []byte) (request, error) {
	var req request
	mediaType, _, _ := mime.ParseMediaType(contentType)
	if mediaType == "application/x-www-form-urlencoded" {
		values, err := url.ParseQuery(string(body))
		if err != nil {
			return req, CodeBadRequest
		}
		req = request{
			ClickTransID:      webhook.FlexString(values.Get("click_trans_id")),
			ServiceID:         webhook.FlexString(values.Get("service_id")),
			ClickPaydocID:     webhook.FlexString(values.Get("click_paydoc_id")),
			MerchantTransID:   webhook.FlexString(values.Get("merchant_trans_id")),
			MerchantPrepareID: webhook.FlexString(values.Get("merchant_prepare_id")),
			Amount:            json.Number(values.Get("amount")),
			Action:            webhook.FlexString(values.Get("action")),
			Error:             webhook.FlexString(values.Get("error")),
			ErrorNote:         values.Get("error_note"),
			SignTime:          values.Get("sign_time"),
			SignString:        values.Get("sign_string"),
		}
	} else if err := json.Unmarshal(body, &req); err != nil {
		return req, CodeBadRequest
	}

	if req.ClickTransID == "" || req.ServiceID == "" || req.MerchantTransID == "" ||
		req.Amount == "" || req.Action == "" || req.SignTime == "" || req.SignString == "" {
		return req, CodeBadRequest
	}

	action, err := strconv.Atoi(req.Action.String())
	if err != nil {
		return req, CodeBadRequest
	}
	req.action = action

	if e := strings.TrimSpace(req.Error.String()); e != "" {
		code, err := strconv.Atoi(e)
		if err != nil {
			return req, CodeBadRequest
		}
		req.errorCode = code
	}
	return req, nil
}
