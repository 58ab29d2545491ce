package sms

import (
	"context"
	"encoding/json"
	"fmt"

	"tripmate/config"
)

// SendReminderSMS 发送行程提醒短信。
// message 填入模板的 content 参数，模板与签名统一走配置。
func SendReminderSMS(ctx context.Context, phone, message string) (*SendResponse, error) {
	cfg := config.Cfg

	templateParam := map[string]string{
		"content": message,
	}
	paramJSON, err := json.Marshal(templateParam)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal template param: %w", err)
	}

	return SendSingle(ctx, phone, cfg.SMSSignName, cfg.SMSTemplateCode, string(paramJSON))
}

// SendBatchReminderSMS 向多个手机号发送同一条行程提醒。
func SendBatchReminderSMS(ctx context.Context, phones []string, message string) (*SendResponse, error) {
	if len(phones) == 0 {
		return nil, fmt.Errorf("phones list is empty")
	}

	cfg := config.Cfg

	param := map[string]string{
		"content": message,
	}
	paramJSON, err := json.Marshal(param)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal template param: %w", err)
	}

	templateParams := make([]string, len(phones))
	for i := range templateParams {
		templateParams[i] = string(paramJSON)
	}

	return SendBatch(ctx, phones, cfg.SMSSignName, cfg.SMSTemplateCode, templateParams)
}
