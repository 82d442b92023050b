package llm

import (
	"Postflow/internal/api/config"
	"Postflow/internal/pkg/consts"
	"context"
	"errors"
	log "log/slog"
	"strings"

	"github.com/tmc/langchaingo/llms"
)

// Request 一次内容生成请求
type Request struct {
	SourceText       string // 素材全文，替换模板中的占位符
	PlatformTemplate string // 平台级提示词模板
	MasterPrompt     string // 主提示词模板，可为空
	ImageDataURI     string // 内联图片，为空则走纯文本模型
}

// Generator 内容生成协作方。生成一旦发出不可中途取消，调用方只能等待完成或超时。
type Generator interface {
	Generate(ctx context.Context, req *Request) (string, error)
}

type generatorImpl struct{}

func NewGenerator() Generator {
	return &generatorImpl{}
}

// BuildPrompt 组装最终提示词。
// 主模板与平台模板中的 {{brief}} 均被素材全文替换；两者同时存在时主模板在前。
func BuildPrompt(req *Request) string {
	var full string
	if req.MasterPrompt != "" {
		full = strings.Replace(req.MasterPrompt, consts.BriefPlaceholder, req.SourceText, 1) + "\n\n" + req.PlatformTemplate
	} else {
		full = req.PlatformTemplate
	}
	return strings.ReplaceAll(full, consts.BriefPlaceholder, req.SourceText)
}

func (s *generatorImpl) Generate(ctx context.Context, req *Request) (string, error) {
	prompt := BuildPrompt(req)

	var resp *llms.ContentResponse
	var err error
	if req.ImageDataURI != "" {
		resp, err = fetchVisionModel(ctx, prompt, req.ImageDataURI)
	} else {
		resp, err = fetchTextModel(ctx, prompt)
	}
	if err != nil {
		return "", err
	}

	if len(resp.Choices) == 0 {
		return "", errors.New("empty completion")
	}
	return strings.TrimSpace(resp.Choices[0].Content), nil
}

func fetchTextModel(ctx context.Context, prompt string) (*llms.ContentResponse, error) {
	if err := TextSem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer TextSem.Release(1)

	messages := []llms.MessageContent{
		{
			Role: llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{
				llms.TextPart(prompt),
			},
		},
	}

	log.InfoContext(ctx, "正在请求内容生成模型")
	return llmClient.GenerateContent(ctx, messages,
		llms.WithModel(config.Cfg.LLM.TextModel),
		llms.WithTemperature(config.Cfg.LLM.Temperature),
		llms.WithMaxTokens(config.Cfg.LLM.MaxTokens),
	)
}

func fetchVisionModel(ctx context.Context, prompt string, imageURI string) (*llms.ContentResponse, error) {
	if err := ImageSem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer ImageSem.Release(1)

	messages := []llms.MessageContent{
		{
			Role: llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{
				llms.TextPart(prompt),
				llms.ImageURLPart(imageURI),
			},
		},
	}

	log.InfoContext(ctx, "正在请求内容生成模型", "vision", true)
	return llmClient.GenerateContent(ctx, messages,
		llms.WithModel(config.Cfg.LLM.VisionModel),
		llms.WithTemperature(config.Cfg.LLM.Temperature),
		llms.WithMaxTokens(config.Cfg.LLM.MaxTokens),
	)
}
