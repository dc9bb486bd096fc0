package service

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"exam_tutor_backend/internal/model"
	"exam_tutor_backend/internal/repository"
	"exam_tutor_backend/internal/util"
	"exam_tutor_backend/pkg/logger"

	"go.uber.org/zap"
)

// DefaultTopic 缺失知识点归入的默认分类
const DefaultTopic = "未分类"

// DraftService 草稿题库：AI/离线生成、清洗、增删改查与统计
type DraftService struct {
	draftRepo *repository.DraftRepository
	ai        *AIService
}

func NewDraftService(draftRepo *repository.DraftRepository, ai *AIService) *DraftService {
	return &DraftService{draftRepo: draftRepo, ai: ai}
}

// mcOptionID 选项位置转 id：前 26 个用 A-Z，之后用序号字符串
func mcOptionID(i int) string {
	if i >= 0 && i < 26 {
		return string(rune('A' + i))
	}
	return strconv.Itoa(i + 1)
}

// difficultyBucket 统计用难度分桶：整数 1-5 各一桶，可识别字符串映射到桶，其余归 other/unknown
func difficultyBucket(v interface{}) string {
	switch d := v.(type) {
	case int:
		if d >= 1 && d <= 5 {
			return strconv.Itoa(d)
		}
		return "other"
	case float64:
		// JSON 反序列化数字统一落为 float64
		if d == float64(int(d)) && int(d) >= 1 && int(d) <= 5 {
			return strconv.Itoa(int(d))
		}
		return "other"
	case string:
		switch strings.ToLower(strings.TrimSpace(d)) {
		case "easy":
			return "1"
		case "medium":
			return "3"
		case "hard":
			return "5"
		}
		return "other"
	default:
		return "unknown"
	}
}

// normalizeTopicAndDifficulty 补默认 topic，难度词转数字
func normalizeTopicAndDifficulty(q map[string]interface{}, fallbackTopic string) map[string]interface{} {
	topic, ok := q["topic"].(string)
	if !ok || strings.TrimSpace(topic) == "" {
		q["topic"] = fallbackTopic
	}

	switch d := q["difficulty"].(type) {
	case string:
		switch strings.ToLower(strings.TrimSpace(d)) {
		case "easy":
			q["difficulty"] = 1
		case "medium":
			q["difficulty"] = 3
		case "hard":
			q["difficulty"] = 5
		}
	case float64:
		q["difficulty"] = int(d)
	}

	return q
}

// NormalizeDraft 把来源不一的草稿题收敛为标准形态：
// 补 id、补 topic/difficulty、补 type、选项结构化、选择题答案文本回写为选项 id、
// knowledge_points 统一为字符串列表、文本字段强制为字符串。
func NormalizeDraft(q map[string]interface{}, fallbackTopic string) map[string]interface{} {
	id, hasID := q["id"]
	switch {
	case !hasID || id == nil:
		q["id"] = model.GenerateHexID()
	default:
		if s, ok := id.(string); ok {
			if strings.TrimSpace(s) == "" {
				q["id"] = model.GenerateHexID()
			}
		} else if f, ok := id.(float64); ok && f == float64(int64(f)) {
			q["id"] = strconv.FormatInt(int64(f), 10)
		}
	}

	normalizeTopicAndDifficulty(q, fallbackTopic)

	qType, ok := q["type"].(string)
	if !ok || strings.TrimSpace(qType) == "" {
		qType = model.QuestionTypeShortAnswer
		q["type"] = qType
	} else {
		qType = strings.TrimSpace(qType)
		q["type"] = qType
	}

	if qType == model.QuestionTypeMultipleChoice {
		if opts, ok := q["options"].([]interface{}); ok && len(opts) > 0 {
			allStrings := true
			allObjects := true
			for _, o := range opts {
				if _, isStr := o.(string); !isStr {
					allStrings = false
				}
				if _, isMap := o.(map[string]interface{}); !isMap {
					allObjects = false
				}
			}
			if allStrings {
				mapped := make([]interface{}, 0, len(opts))
				for i, o := range opts {
					mapped = append(mapped, map[string]interface{}{"id": mcOptionID(i), "text": o})
				}
				q["options"] = mapped
			} else if allObjects {
				normalized := make([]interface{}, 0, len(opts))
				for i, o := range opts {
					obj := o.(map[string]interface{})
					oid, _ := obj["id"].(string)
					if strings.TrimSpace(oid) == "" {
						oid = mcOptionID(i)
					}
					var text string
					switch t := obj["text"].(type) {
					case string:
						text = t
					case nil:
						text = ""
					default:
						text = fmt.Sprintf("%v", t)
					}
					normalized = append(normalized, map[string]interface{}{"id": oid, "text": text})
				}
				q["options"] = normalized
			}
		}
		if _, ok := q["options"].([]interface{}); !ok {
			q["options"] = []interface{}{}
		}

		var caStr string
		switch ca := q["correct_answer"].(type) {
		case string:
			caStr = strings.TrimSpace(ca)
		case nil:
			caStr = ""
		default:
			caStr = strings.TrimSpace(fmt.Sprintf("%v", ca))
		}

		matched := false
		if opts, ok := q["options"].([]interface{}); ok {
			for _, o := range opts {
				obj, isMap := o.(map[string]interface{})
				if !isMap {
					continue
				}
				if text, isStr := obj["text"].(string); isStr && text == caStr {
					if oid, hasOID := obj["id"]; hasOID {
						q["correct_answer"] = oid
					} else {
						q["correct_answer"] = caStr
					}
					matched = true
					break
				}
			}
		}
		if !matched {
			q["correct_answer"] = caStr
		}
	} else {
		switch ca := q["correct_answer"].(type) {
		case string:
		case nil:
			q["correct_answer"] = ""
		default:
			q["correct_answer"] = fmt.Sprintf("%v", ca)
		}
	}

	switch kp := q["knowledge_points"].(type) {
	case nil:
		q["knowledge_points"] = []interface{}{}
	case string:
		parts := []interface{}{}
		for _, p := range strings.Split(kp, ",") {
			if s := strings.TrimSpace(p); s != "" {
				parts = append(parts, s)
			}
		}
		q["knowledge_points"] = parts
	case []interface{}:
		cleaned := []interface{}{}
		for _, x := range kp {
			if x == nil {
				continue
			}
			s := fmt.Sprintf("%v", x)
			if strings.TrimSpace(s) != "" {
				cleaned = append(cleaned, s)
			}
		}
		q["knowledge_points"] = cleaned
	default:
		q["knowledge_points"] = []interface{}{fmt.Sprintf("%v", kp)}
	}

	for _, k := range []string{"stem", "reference_outline", "isomorphic_group", "topic"} {
		if v, ok := q[k]; ok && v != nil {
			if _, isStr := v.(string); !isStr {
				q[k] = fmt.Sprintf("%v", v)
			}
		}
	}

	return q
}

// GenerateDrafts 生成草稿题。source 三种取值：
//   - ai：严格走大模型，失败直接报错
//   - offline：直接用离线精选题
//   - auto：先 AI，失败降级为离线题
func (s *DraftService) GenerateDrafts(topic string, count int, source string) ([]map[string]interface{}, error) {
	var (
		res []map[string]interface{}
		err error
	)
	switch source {
	case "offline":
		res = BuildFallbackQuestions(topic, count)
	case "ai":
		res, err = s.ai.GenerateDraftQuestions(topic, count)
		if err != nil {
			return nil, err
		}
	default:
		res, err = s.ai.GenerateDraftQuestions(topic, count)
		if err != nil {
			logger.Log.Warn("AI 生成失败，降级为离线题池", zap.Error(err))
			res = BuildFallbackQuestions(topic, count)
		}
	}

	fallbackTopic := strings.TrimSpace(topic)
	if fallbackTopic == "" {
		fallbackTopic = DefaultTopic
	}
	for i, q := range res {
		res[i] = normalizeTopicAndDifficulty(q, fallbackTopic)
	}
	return res, nil
}

// DraftStatBucket 单个统计桶
type DraftStatBucket struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

// DraftStats 草稿区质量统计
type DraftStats struct {
	Total        int               `json:"total"`
	ByTopic      []DraftStatBucket `json:"by_topic"`
	ByType       []DraftStatBucket `json:"by_type"`
	ByDifficulty []DraftStatBucket `json:"by_difficulty"`
	Missing      struct {
		Topic      int `json:"topic"`
		Type       int `json:"type"`
		Difficulty int `json:"difficulty"`
	} `json:"missing"`
}

// sortedBuckets 按 count 降序、key 升序输出
func sortedBuckets(m map[string]int) []DraftStatBucket {
	buckets := make([]DraftStatBucket, 0, len(m))
	for k, v := range m {
		buckets = append(buckets, DraftStatBucket{Key: k, Count: v})
	}
	sort.Slice(buckets, func(i, j int) bool {
		if buckets[i].Count != buckets[j].Count {
			return buckets[i].Count > buckets[j].Count
		}
		return buckets[i].Key < buckets[j].Key
	})
	return buckets
}

func (s *DraftService) Stats() (*DraftStats, error) {
	data, err := s.draftRepo.Load()
	if err != nil {
		return nil, err
	}

	stats := &DraftStats{Total: len(data)}
	byTopic := map[string]int{}
	byType := map[string]int{}
	byDifficulty := map[string]int{}

	for _, q := range data {
		topic, ok := q["topic"].(string)
		if !ok || strings.TrimSpace(topic) == "" {
			stats.Missing.Topic++
			topic = DefaultTopic
		}
		byTopic[topic]++

		qType, ok := q["type"].(string)
		if !ok || strings.TrimSpace(qType) == "" {
			stats.Missing.Type++
			qType = "unknown"
		}
		byType[qType]++

		if _, has := q["difficulty"]; !has {
			stats.Missing.Difficulty++
		}
		byDifficulty[difficultyBucket(q["difficulty"])]++
	}

	stats.ByTopic = sortedBuckets(byTopic)
	stats.ByType = sortedBuckets(byType)
	stats.ByDifficulty = sortedBuckets(byDifficulty)
	return stats, nil
}

// DraftListQuery 草稿列表过滤与分页参数
type DraftListQuery struct {
	Keyword    string
	Topic      string
	Type       string
	Difficulty *int
	Offset     int
	Limit      int
}

// DraftListResult 草稿分页结果，附全量 topic/type 候选集供前端做筛选器
type DraftListResult struct {
	Total  int                      `json:"total"`
	Offset int                      `json:"offset"`
	Limit  int                      `json:"limit"`
	Items  []map[string]interface{} `json:"items"`
	Topics []string                 `json:"topics"`
	Types  []string                 `json:"types"`
}

func displayTopic(q map[string]interface{}) string {
	if t, ok := q["topic"].(string); ok && strings.TrimSpace(t) != "" {
		return t
	}
	return DefaultTopic
}

func displayType(q map[string]interface{}) string {
	if t, ok := q["type"].(string); ok && strings.TrimSpace(t) != "" {
		return t
	}
	return "unknown"
}

func displayDifficulty(q map[string]interface{}) *int {
	switch d := q["difficulty"].(type) {
	case float64:
		v := int(d)
		return &v
	case int:
		return &d
	case string:
		if v, err := strconv.Atoi(d); err == nil {
			return &v
		}
	}
	return nil
}

// List 过滤在分页前进行，total 是过滤后的总数
func (s *DraftService) List(query DraftListQuery) (*DraftListResult, error) {
	data, err := s.draftRepo.Load()
	if err != nil {
		return nil, err
	}

	items := make([]map[string]interface{}, 0, len(data))
	for _, item := range data {
		if query.Topic != "" && displayTopic(item) != query.Topic {
			continue
		}
		if query.Type != "" && displayType(item) != query.Type {
			continue
		}
		if query.Difficulty != nil {
			d := displayDifficulty(item)
			if d == nil || *d != *query.Difficulty {
				continue
			}
		}
		if query.Keyword != "" {
			needle := strings.ToLower(strings.TrimSpace(query.Keyword))
			stem, ok := item["stem"].(string)
			if !ok || !strings.Contains(strings.ToLower(stem), needle) {
				continue
			}
		}
		items = append(items, item)
	}

	topicSet := map[string]struct{}{}
	typeSet := map[string]struct{}{}
	for _, it := range data {
		topicSet[displayTopic(it)] = struct{}{}
		typeSet[displayType(it)] = struct{}{}
	}
	topics := make([]string, 0, len(topicSet))
	for t := range topicSet {
		topics = append(topics, t)
	}
	sort.Strings(topics)
	types := make([]string, 0, len(typeSet))
	for t := range typeSet {
		types = append(types, t)
	}
	sort.Strings(types)

	offset := query.Offset
	if offset < 0 {
		offset = 0
	}
	limit := query.Limit
	if limit < 1 {
		limit = 1
	}
	if limit > 200 {
		limit = 200
	}

	total := len(items)
	var page []map[string]interface{}
	if offset < total {
		end := offset + limit
		if end > total {
			end = total
		}
		page = items[offset:end]
	} else {
		page = []map[string]interface{}{}
	}

	return &DraftListResult{
		Total:  total,
		Offset: offset,
		Limit:  limit,
		Items:  page,
		Topics: topics,
		Types:  types,
	}, nil
}

func draftID(q map[string]interface{}) string {
	if id, ok := q["id"]; ok && id != nil {
		return fmt.Sprintf("%v", id)
	}
	return ""
}

func (s *DraftService) Get(draftIDArg string) (map[string]interface{}, error) {
	data, err := s.draftRepo.Load()
	if err != nil {
		return nil, err
	}
	for _, item := range data {
		if draftID(item) == draftIDArg {
			return item, nil
		}
	}
	return nil, util.ErrNotFound
}

// Create 新建草稿，id 冲突时追加 4 位随机 hex 后缀
func (s *DraftService) Create(payload map[string]interface{}) (map[string]interface{}, error) {
	data, err := s.draftRepo.Load()
	if err != nil {
		return nil, err
	}

	fallbackTopic := DefaultTopic
	if t, ok := payload["topic"].(string); ok && strings.TrimSpace(t) != "" {
		fallbackTopic = t
	}
	q := NormalizeDraft(clone(payload), fallbackTopic)

	existing := map[string]struct{}{}
	for _, item := range data {
		if id := draftID(item); id != "" {
			existing[id] = struct{}{}
		}
	}
	if _, clash := existing[draftID(q)]; clash {
		q["id"] = fmt.Sprintf("%s_%s", draftID(q), model.GenerateHexID()[:4])
	}

	data = append(data, q)
	if err := s.draftRepo.Save(data); err != nil {
		return nil, err
	}
	return q, nil
}

// Update 整体替换语义：payload 与路径 id 合并后重新归一化
func (s *DraftService) Update(draftIDArg string, payload map[string]interface{}) (map[string]interface{}, error) {
	data, err := s.draftRepo.Load()
	if err != nil {
		return nil, err
	}

	idx := -1
	for i, item := range data {
		if draftID(item) == draftIDArg {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, util.ErrNotFound
	}

	fallbackTopic := DefaultTopic
	if t, ok := payload["topic"].(string); ok && strings.TrimSpace(t) != "" {
		fallbackTopic = t
	} else if t, ok := data[idx]["topic"].(string); ok && strings.TrimSpace(t) != "" {
		fallbackTopic = t
	}

	merged := clone(payload)
	merged["id"] = draftIDArg
	q := NormalizeDraft(merged, fallbackTopic)
	data[idx] = q

	if err := s.draftRepo.Save(data); err != nil {
		return nil, err
	}
	return q, nil
}

func (s *DraftService) Delete(draftIDArg string) error {
	data, err := s.draftRepo.Load()
	if err != nil {
		return err
	}
	kept := make([]map[string]interface{}, 0, len(data))
	for _, item := range data {
		if draftID(item) != draftIDArg {
			kept = append(kept, item)
		}
	}
	if len(kept) == len(data) {
		return util.ErrNotFound
	}
	return s.draftRepo.Save(kept)
}

// NormalizeResult 批量清洗的修复计数
type NormalizeResult struct {
	Total              int `json:"total"`
	Changed            int `json:"changed"`
	TopicFilled        int `json:"topic_filled"`
	OptionsFixed       int `json:"options_fixed"`
	CorrectAnswerFixed int `json:"correct_answer_fixed"`
	DifficultyFixed    int `json:"difficulty_fixed"`
}

// NormalizeAll 对整个草稿区跑一遍归一化并统计每类修复次数
func (s *DraftService) NormalizeAll(defaultTopic string) (*NormalizeResult, error) {
	data, err := s.draftRepo.Load()
	if err != nil {
		return nil, err
	}

	fallbackTopic := strings.TrimSpace(defaultTopic)
	if fallbackTopic == "" {
		fallbackTopic = DefaultTopic
	}

	result := &NormalizeResult{Total: len(data)}
	for i, item := range data {
		before := canonicalJSON(item)
		topicStr, topicOK := item["topic"].(string)
		beforeTopicMissing := !topicOK || strings.TrimSpace(topicStr) == ""
		beforeOpts := canonicalJSON(item["options"])
		beforeCA := canonicalJSON(item["correct_answer"])
		beforeDiff := canonicalJSON(item["difficulty"])

		NormalizeDraft(item, fallbackTopic)

		if afterTopic, ok := item["topic"].(string); beforeTopicMissing && ok && strings.TrimSpace(afterTopic) != "" {
			result.TopicFilled++
		}
		if beforeOpts != canonicalJSON(item["options"]) {
			result.OptionsFixed++
		}
		if beforeCA != canonicalJSON(item["correct_answer"]) {
			result.CorrectAnswerFixed++
		}
		if beforeDiff != canonicalJSON(item["difficulty"]) {
			result.DifficultyFixed++
		}
		if before != canonicalJSON(item) {
			result.Changed++
		}
		data[i] = item
	}

	if err := s.draftRepo.Save(data); err != nil {
		return nil, err
	}
	return result, nil
}

// SaveDrafts 批量追加（审核通过的 AI 生成题等），逐题归一化并消解 id 冲突
func (s *DraftService) SaveDrafts(questions []map[string]interface{}) (int, error) {
	data, err := s.draftRepo.Load()
	if err != nil {
		return 0, err
	}

	existing := map[string]struct{}{}
	for _, item := range data {
		if id := draftID(item); id != "" {
			existing[id] = struct{}{}
		}
	}

	added := 0
	for _, q := range questions {
		fallbackTopic := DefaultTopic
		if t, ok := q["topic"].(string); ok && strings.TrimSpace(t) != "" {
			fallbackTopic = t
		}
		obj := NormalizeDraft(clone(q), fallbackTopic)
		if _, clash := existing[draftID(obj)]; clash {
			obj["id"] = fmt.Sprintf("%s_%s", draftID(obj), model.GenerateHexID()[:4])
		}
		existing[draftID(obj)] = struct{}{}
		data = append(data, obj)
		added++
	}

	if err := s.draftRepo.Save(data); err != nil {
		return 0, err
	}
	return added, nil
}

func clone(m map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// canonicalJSON 变更检测用：map 序列化后键序稳定
func canonicalJSON(v interface{}) string {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(b)
}
