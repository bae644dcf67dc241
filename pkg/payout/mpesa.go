package payout

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"taka/internal/logger"
)

// LiberecMpesaProvider pays collectors via M-Pesa B2C through the
// TheLiberec Card API.
type LiberecMpesaProvider struct {
	BaseURL     string
	Email       string
	Password    string
	WebhookBase string
	client      *http.Client
}

func NewLiberecMpesaProvider(baseURL, email, password, webhookBase string) *LiberecMpesaProvider {
	if baseURL == "" {
		baseURL = "https://card-api.theliberec.com"
	}
	return &LiberecMpesaProvider{
		BaseURL:     baseURL,
		Email:       email,
		Password:    password,
		WebhookBase: webhookBase,
		client:      &http.Client{Timeout: 30 * time.Second},
	}
}

type liberecLoginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type liberecLoginResp struct {
	Token string `json:"token"`
}

// getToken logs in and returns a fresh token (per transaction as recommended).
func (p *LiberecMpesaProvider) getToken(ctx context.Context) (string, error) {
	body, _ := json.Marshal(liberecLoginReq{Email: p.Email, Password: p.Password})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.BaseURL+"/api/v1/merchants/login", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := p.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("login failed: %d", resp.StatusCode)
	}
	var out liberecLoginResp
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	return out.Token, nil
}

type b2cResp struct {
	UUID                string `json:"uuid"`
	OrderID             string `json:"order_id"`
	ConversationID      string `json:"conversation_id"`
	Amount              int    `json:"amount"`
	PhoneNumber         string `json:"phone_number"`
	Status              string `json:"status"`
	ResponseCode        string `json:"response_code"`
	ResponseDescription string `json:"response_description"`
	CreatedAt           string `json:"created_at"`
}

func (p *LiberecMpesaProvider) InitiatePayout(ctx context.Context, req Request) (*Response, error) {
	token, err := p.getToken(ctx)
	if err != nil {
		return nil, fmt.Errorf("b2c login: %w", err)
	}
	orderID := req.OrderID
	if orderID == "" {
		orderID = fmt.Sprintf("wd-%s", uuid.New().String())
	}
	callbackURL := req.CallbackURL
	if callbackURL == "" && p.WebhookBase != "" {
		base := p.WebhookBase
		if !strings.HasPrefix(base, "http") {
			base = "https://" + base
		}
		callbackURL = base + "/api/v1/webhooks/withdrawal"
	}
	body := map[string]string{
		"amount":       req.Amount.Truncate(0).String(), // B2C takes whole KES
		"phone_number": req.PhoneNumber,
		"description":  req.Description,
		"remarks":      req.Remarks,
		"order_id":     orderID,
		"callback_url": callbackURL,
	}
	if body["description"] == "" {
		body["description"] = "Wallet withdrawal"
	}
	if body["remarks"] == "" {
		body["remarks"] = "Recycling rewards payout"
	}
	bodyBytes, _ := json.Marshal(body)
	apiReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.BaseURL+"/api/v1/transactions/mpesa/b2c", bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, err
	}
	apiReq.Header.Set("Content-Type", "application/json")
	apiReq.Header.Set("Authorization", "Bearer "+token)
	logger.Log.Infof("[MPESA B2C] POST %s/transactions/mpesa/b2c order_id=%s amount=%s phone=%s", p.BaseURL, orderID, req.Amount.String(), req.PhoneNumber)
	resp, err := p.client.Do(apiReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	respBody, _ := io.ReadAll(resp.Body)
	logger.Log.Infof("[MPESA B2C] response status=%d body=%s", resp.StatusCode, string(respBody))
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("b2c api: %d %s", resp.StatusCode, string(respBody))
	}
	var out b2cResp
	if err := json.Unmarshal(respBody, &out); err != nil {
		return nil, err
	}
	return &Response{
		Reference:           orderID,
		Status:              out.Status,
		ResponseCode:        out.ResponseCode,
		ResponseDescription: out.ResponseDescription,
	}, nil
}
