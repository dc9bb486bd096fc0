package service

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"exam_tutor_backend/internal/config"
	"exam_tutor_backend/pkg/logger"
	"exam_tutor_backend/pkg/monitoring"

	"go.uber.org/zap"
)

// 允许的错因类别，模型输出之外的值会被归一化到这五类之一
const (
	ErrorTypeConceptual    = "Conceptual Error"
	ErrorTypeProcedural    = "Procedural Error"
	ErrorTypeComputational = "Computational Error"
	ErrorTypeStrategy      = "Strategy Error"
	ErrorTypeCareless      = "Careless Error"
)

// Diagnosis 错题诊断结果，永不为空：AI 不可用时由启发式兜底生成
type Diagnosis struct {
	PrimaryErrorType           string   `json:"primary_error_type"`
	ErrorExplanation           string   `json:"error_explanation"`
	HintLevel                  int      `json:"hint_level"`
	Hint                       string   `json:"hint"`
	RecommendedKnowledgePoints []string `json:"recommended_knowledge_points"`
}

// AIService 大模型网关：chat/completions 调用、JSON 清洗、重试与降级
type AIService struct {
	mu     sync.RWMutex
	cfg    config.AIConfig
	client *http.Client
}

func NewAIService(cfg config.AIConfig) *AIService {
	return &AIService{
		cfg: cfg,
		client: &http.Client{
			Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		},
	}
}

// UpdateConfig 配置热更新回调，仅替换 AI 相关参数
func (s *AIService) UpdateConfig(cfg config.AIConfig) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg = cfg
	s.client.Timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	logger.Log.Info("AI 配置已热更新",
		zap.String("model", cfg.Model),
		zap.Int("timeout_seconds", cfg.TimeoutSeconds))
}

func (s *AIService) snapshot() config.AIConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string        `json:"model"`
	Messages       []chatMessage `json:"messages"`
	ResponseFormat struct {
		Type string `json:"type"`
	} `json:"response_format"`
	Temperature float64 `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

var (
	fencedJSONRe = regexp.MustCompile("```json\\s*([\\s\\S]*?)\\s*```")
	fencedRe     = regexp.MustCompile("```\\s*([\\s\\S]*?)\\s*```")
)

// stripCodeFence 剥离模型偶尔附带的 markdown 代码围栏
func stripCodeFence(content string) string {
	if m := fencedJSONRe.FindStringSubmatch(content); m != nil {
		return strings.TrimSpace(m[1])
	}
	if m := fencedRe.FindStringSubmatch(content); m != nil {
		return strings.TrimSpace(m[1])
	}
	return strings.TrimSpace(content)
}

// chatJSON 单次调用 chat/completions 并把回答解析为 JSON 字节。
// 任何环节失败都返回 error，由调用方决定重试或降级。
func (s *AIService) chatJSON(systemPrompt, userPrompt string) ([]byte, error) {
	cfg := s.snapshot()
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("AI API key 未配置")
	}
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = "https://api.deepseek.com"
	}
	url := base + "/chat/completions"

	reqBody := chatRequest{
		Model: cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		Temperature: 0.1,
	}
	reqBody.ResponseFormat.Type = "json_object"

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+cfg.APIKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, fmt.Errorf("AI 接口返回 %d: %s", resp.StatusCode, string(body))
	}

	var cr chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return nil, err
	}
	if len(cr.Choices) == 0 {
		return nil, fmt.Errorf("AI 响应缺少 choices")
	}

	cleaned := stripCodeFence(cr.Choices[0].Message.Content)
	if !json.Valid([]byte(cleaned)) {
		return nil, fmt.Errorf("AI 响应不是合法 JSON")
	}
	return []byte(cleaned), nil
}

// AnalyzeWrongAnswer 分析错题并产出诊断，调用方永远能拿到结果。
// 最多重试 MaxRetries 次（指数退避 600ms * 2^n），全部失败后走本地启发式。
func (s *AIService) AnalyzeWrongAnswer(stem, correctAnswer, referenceOutline, studentAnswer string, hintLevel int) *Diagnosis {
	systemPrompt := "You are an expert tutor. Analyze the student's wrong answer and give feedback without solving. " +
		"Return strict JSON only."
	userPrompt := fmt.Sprintf(
		"Task: Analyze the following wrong answer.\n\n"+
			"Question: %s\n"+
			"Correct Answer: %s\n"+
			"Reference Outline: %s\n"+
			"Student Answer: %s\n"+
			"Requested Hint Level: %d (1=Subtle, 2=Moderate, 3=Strong)\n\n"+
			"Constraints:\n"+
			"1) \"primary_error_type\" must be exactly one of: \"Conceptual Error\", \"Procedural Error\", \"Computational Error\", \"Strategy Error\", \"Careless Error\".\n"+
			"2) error_explanation: 1-2 sentences.\n"+
			"3) hint: exactly ONE sentence; do NOT reveal the answer; do NOT solve.\n"+
			"4) recommended_knowledge_points: list 1-5 short phrases.\n\n"+
			"Output JSON:\n"+
			"{\"primary_error_type\":\"...\",\"error_explanation\":\"...\",\"hint_level\":%d,\"hint\":\"...\",\"recommended_knowledge_points\":[\"...\"]}",
		stem, correctAnswer, referenceOutline, studentAnswer, hintLevel, hintLevel)

	retries := s.snapshot().MaxRetries
	for attempt := 0; attempt < retries; attempt++ {
		raw, err := s.chatJSON(systemPrompt, userPrompt)
		if err == nil {
			var parsed map[string]interface{}
			if jsonErr := json.Unmarshal(raw, &parsed); jsonErr == nil && len(parsed) > 0 {
				monitoring.DiagnosisCounter.WithLabelValues("ai").Inc()
				return normalizeDiagnosis(parsed, hintLevel, referenceOutline)
			}
		} else {
			logger.Log.Warn("错题诊断调用失败",
				zap.Int("attempt", attempt+1),
				zap.Error(err))
		}
		time.Sleep(600 * time.Millisecond * time.Duration(1<<attempt))
	}

	monitoring.DiagnosisCounter.WithLabelValues("fallback").Inc()
	return fallbackDiagnosis(correctAnswer, studentAnswer, referenceOutline, hintLevel)
}

// normalizeDiagnosis 把模型的自由输出收敛到固定 schema 与封闭错因集合
func normalizeDiagnosis(raw map[string]interface{}, hintLevel int, referenceOutline string) *Diagnosis {
	et, _ := raw["primary_error_type"].(string)
	et = strings.TrimSpace(et)
	switch et {
	case ErrorTypeConceptual, ErrorTypeProcedural, ErrorTypeComputational, ErrorTypeStrategy, ErrorTypeCareless:
	default:
		s := strings.ToLower(et)
		switch {
		case strings.Contains(s, "procedure") || strings.Contains(s, "process") || strings.Contains(s, "step"):
			et = ErrorTypeProcedural
		case strings.Contains(s, "compute") || strings.Contains(s, "calculation") || strings.Contains(s, "arithmetic"):
			et = ErrorTypeComputational
		case strings.Contains(s, "strategy") || strings.Contains(s, "approach"):
			et = ErrorTypeStrategy
		case strings.Contains(s, "careless") || strings.Contains(s, "typo") || strings.Contains(s, "slip"):
			et = ErrorTypeCareless
		default:
			et = ErrorTypeConceptual
		}
	}

	exp, _ := raw["error_explanation"].(string)
	exp = strings.TrimSpace(exp)
	if exp == "" {
		exp = "Your answer does not match the expected reasoning."
	}

	hint, _ := raw["hint"].(string)
	hint = strings.TrimSpace(hint)
	if hint == "" {
		ref := strings.TrimSpace(referenceOutline)
		if ref == "" {
			ref = "the relevant concept"
		}
		hint = fmt.Sprintf("Re-check the key idea in the reference outline about %s.", ref)
	}

	var kps []string
	switch v := raw["recommended_knowledge_points"].(type) {
	case []interface{}:
		for _, item := range v {
			s := strings.TrimSpace(fmt.Sprintf("%v", item))
			if item != nil && s != "" {
				kps = append(kps, s)
			}
		}
	case string:
		for _, part := range strings.Split(v, ",") {
			if p := strings.TrimSpace(part); p != "" {
				kps = append(kps, p)
			}
		}
	case nil:
	default:
		if s := strings.TrimSpace(fmt.Sprintf("%v", v)); s != "" {
			kps = append(kps, s)
		}
	}
	if kps == nil {
		kps = []string{}
	}

	return &Diagnosis{
		PrimaryErrorType:           et,
		ErrorExplanation:           exp,
		HintLevel:                  hintLevel,
		Hint:                       hint,
		RecommendedKnowledgePoints: kps,
	}
}

// fallbackDiagnosis AI 全部失败后的本地启发式：按数值差距粗分错因
func fallbackDiagnosis(correctAnswer, studentAnswer, referenceOutline string, hintLevel int) *Diagnosis {
	student := strings.TrimSpace(studentAnswer)

	et := ErrorTypeConceptual
	if student == "" {
		et = ErrorTypeStrategy
	} else {
		ca, errCA := strconv.ParseFloat(strings.TrimSpace(correctAnswer), 64)
		sa, errSA := strconv.ParseFloat(student, 64)
		if errCA == nil && errSA == nil {
			diff := ca - sa
			if diff < 0 {
				diff = -diff
			}
			absCA := ca
			if absCA < 0 {
				absCA = -absCA
			}
			if diff < 1e-6 {
				et = ErrorTypeCareless
			} else if diff/(absCA+1e-6) < 0.05 {
				et = ErrorTypeComputational
			}
		}
	}

	ref := strings.TrimSpace(referenceOutline)
	if ref == "" {
		ref = "the relevant concept"
	}
	var hint string
	switch hintLevel {
	case 1:
		hint = fmt.Sprintf("Revisit the core concept mentioned in the reference outline about %s.", ref)
	case 2:
		hint = fmt.Sprintf("Identify the specific rule/step in the reference outline about %s that your answer violates.", ref)
	default:
		hint = fmt.Sprintf("Compare your answer with the reference outline about %s and locate the first incorrect step.", ref)
	}

	return &Diagnosis{
		PrimaryErrorType:           et,
		ErrorExplanation:           "Your answer does not align with the expected reasoning based on the reference outline.",
		HintLevel:                  hintLevel,
		Hint:                       hint,
		RecommendedKnowledgePoints: []string{ref},
	}
}

// GenerateDraftQuestions 调用 AI 生成草稿题，失败时返回 error 由上层决定是否降级。
// 接受 {"questions":[...]} 包裹或裸数组两种返回形态。
func (s *AIService) GenerateDraftQuestions(topic string, count int) ([]map[string]interface{}, error) {
	systemPrompt := "Return strict JSON only."
	userPrompt := fmt.Sprintf(
		`Generate %d high-quality questions for the subject/topic "%s". `+
			`Return JSON: {"questions":[{id, stem, type, options?, correct_answer, difficulty, reference_outline, knowledge_points, isomorphic_group, topic}...]}. `+
			`type in {"short_answer","multiple_choice"}; options only for multiple_choice; difficulty must be 1-5; topic should be the provided subject/topic.`,
		count, topic)

	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		raw, err := s.chatJSON(systemPrompt, userPrompt)
		if err != nil {
			lastErr = err
			continue
		}

		var wrapped struct {
			Questions []map[string]interface{} `json:"questions"`
		}
		if err := json.Unmarshal(raw, &wrapped); err == nil && len(wrapped.Questions) > 0 {
			return wrapped.Questions, nil
		}

		var bare []map[string]interface{}
		if err := json.Unmarshal(raw, &bare); err == nil && len(bare) > 0 {
			return bare, nil
		}

		lastErr = fmt.Errorf("AI 返回无可用题目")
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("AI 生成失败")
	}
	return nil, lastErr
}
