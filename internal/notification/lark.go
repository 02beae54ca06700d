package notification

import (
	"context"
	"encoding/json"
	"fmt"

	lark "github.com/larksuite/oapi-sdk-go/v3"
	larkcore "github.com/larksuite/oapi-sdk-go/v3/core"
	larkim "github.com/larksuite/oapi-sdk-go/v3/service/im/v1"
	"go.uber.org/zap"
)

// LarkConfig holds the messenger credentials and the chat each department
// receives its notices in.
type LarkConfig struct {
	AppID           string
	AppSecret       string
	DepartmentChats map[string]string
}

// LarkNotifier sends step-transition notices as Lark chat messages.
type LarkNotifier struct {
	client *lark.Client
	chats  map[string]string
	logger *zap.Logger
}

// NewLarkNotifier creates a notifier backed by the Lark messaging API.
func NewLarkNotifier(cfg LarkConfig, logger *zap.Logger) *LarkNotifier {
	client := lark.NewClient(cfg.AppID, cfg.AppSecret,
		lark.WithLogLevel(larkcore.LogLevelInfo),
		lark.WithEnableTokenCache(true),
	)
	return &LarkNotifier{
		client: client,
		chats:  cfg.DepartmentChats,
		logger: logger,
	}
}

// StepAdvanced implements Notifier. Departments without a configured chat
// are skipped silently.
func (n *LarkNotifier) StepAdvanced(ctx context.Context, notice StepAdvanced) error {
	chatID := n.chats[notice.Department]
	if chatID == "" {
		n.logger.Debug("No chat configured for department, skipping notice",
			zap.String("department", notice.Department))
		return nil
	}

	text := fmt.Sprintf("[%s %s-%s] %s 단계 %d(%s)가 %s 담당으로 진행 가능합니다.",
		notice.Site, notice.Year, notice.Month,
		notice.CostLabel, notice.StepNo, notice.Task, notice.Department)

	content, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return fmt.Errorf("failed to encode message content: %w", err)
	}

	req := larkim.NewCreateMessageReqBuilder().
		ReceiveIdType("chat_id").
		Body(larkim.NewCreateMessageReqBodyBuilder().
			ReceiveId(chatID).
			MsgType("text").
			Content(string(content)).
			Build()).
		Build()

	resp, err := n.client.Im.Message.Create(ctx, req)
	if err != nil {
		n.logger.Error("Failed to send step notice",
			zap.String("chat_id", chatID), zap.Error(err))
		return fmt.Errorf("failed to send step notice: %w", err)
	}
	if !resp.Success() {
		n.logger.Error("Lark API returned failure",
			zap.String("chat_id", chatID),
			zap.Int("code", resp.Code), zap.String("msg", resp.Msg))
		return fmt.Errorf("lark API error: code=%d, msg=%s", resp.Code, resp.Msg)
	}

	n.logger.Info("Step notice sent",
		zap.String("department", notice.Department),
		zap.Int("step_no", notice.StepNo))
	return nil
}
