package gemini

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/storefront-chat/internal/domain/entity"
	"github.com/yourusername/storefront-chat/pkg/logger"
)

func TestMain(m *testing.M) {
	logger.Discard()
	os.Exit(m.Run())
}

type fakeModel struct {
	responses []*genai.GenerateContentResponse
	errs      []error
	calls     int
	lastParts []genai.Part
}

func (f *fakeModel) GenerateContent(_ context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error) {
	i := f.calls
	f.calls++
	f.lastParts = parts
	if i < len(f.errs) && f.errs[i] != nil {
		return nil, f.errs[i]
	}
	if i < len(f.responses) {
		return f.responses[i], nil
	}
	return nil, errors.New("no scripted response")
}

func textResponse(text string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{
		Content: &genai.Content{Parts: []genai.Part{genai.Text(text)}},
	}}}
}

func partsText(parts []genai.Part) string {
	var b strings.Builder
	for _, p := range parts {
		if t, ok := p.(genai.Text); ok {
			b.WriteString(string(t))
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func TestSend_IncludesMenuCartAndHistory(t *testing.T) {
	model := &fakeModel{responses: []*genai.GenerateContentResponse{
		textResponse("- Cá Kho Làng Vũ Đại - 89.000₫"),
		textResponse("Dạ vâng"),
	}}
	menu := func() []entity.CatalogItem {
		return []entity.CatalogItem{{ID: "p3", Kind: entity.KindProduct, Name: "Cá Kho Làng Vũ Đại", Price: 89000}}
	}
	tr := newTransport(model, menu)
	tr.retryDelay = 0
	ctx := context.Background()

	reply, err := tr.Send(ctx, entity.ChatRequest{Message: "có cá kho không?", SessionID: "s1"})
	require.NoError(t, err)
	assert.Equal(t, "- Cá Kho Làng Vũ Đại - 89.000₫", reply.Text)
	assert.Nil(t, reply.Cart)
	assert.Nil(t, reply.Order)

	_, err = tr.Send(ctx, entity.ChatRequest{
		Message:   "thêm 2 phần",
		SessionID: "s1",
		Cart:      []entity.CartLine{{ItemID: "p3", Name: "Cá Kho Làng Vũ Đại", Price: 89000, Quantity: 2}},
	})
	require.NoError(t, err)

	prompt := partsText(model.lastParts)
	assert.Contains(t, prompt, "- Cá Kho Làng Vũ Đại - 89.000₫")
	assert.Contains(t, prompt, "Tổng cộng: 178.000₫")
	assert.Contains(t, prompt, "Khách: có cá kho không?")
	assert.True(t, strings.HasSuffix(strings.TrimSpace(prompt), "thêm 2 phần"))
}

func TestSend_RetriesThenFails(t *testing.T) {
	model := &fakeModel{errs: []error{errors.New("a"), errors.New("b"), errors.New("c")}}
	tr := newTransport(model, nil)
	tr.retryDelay = 0

	_, err := tr.Send(context.Background(), entity.ChatRequest{Message: "xin chào"})
	require.Error(t, err)
	assert.Equal(t, 3, model.calls)
}

func TestSend_RetriesEmptyAnswer(t *testing.T) {
	model := &fakeModel{responses: []*genai.GenerateContentResponse{
		textResponse("   "),
		textResponse("Xin chào!"),
	}}
	tr := newTransport(model, nil)
	tr.retryDelay = 0

	reply, err := tr.Send(context.Background(), entity.ChatRequest{Message: "hi"})
	require.NoError(t, err)
	assert.Equal(t, "Xin chào!", reply.Text)
	assert.Equal(t, 2, model.calls)
}

func TestSend_SafetyBlock(t *testing.T) {
	blocked := &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{FinishReason: genai.FinishReasonSafety}}}
	tr := newTransport(&fakeModel{responses: []*genai.GenerateContentResponse{blocked}}, nil)

	reply, err := tr.Send(context.Background(), entity.ChatRequest{Message: "..."})
	require.NoError(t, err)
	assert.Equal(t, SafetyBlockedReply, reply.Text)
}

func TestFormatVND(t *testing.T) {
	assert.Equal(t, "449.000₫", formatVND(449000))
	assert.Equal(t, "1.250.000₫", formatVND(1250000))
	assert.Equal(t, "900₫", formatVND(900))
}
