package service

import "fmt"

// fallbackPool 离线兜底题池（微积分精选 7 题），AI 不可用时循环取用。
// 兜底题带 is_fallback 标记，冻结入库时会被过滤掉。
func fallbackPool(topic string) []map[string]interface{} {
	tp := topic
	if tp == "" {
		tp = "Calculus"
	}
	return []map[string]interface{}{
		{
			"id":                "draft_limit_sin_over_x",
			"stem":              "Compute the limit: lim_{x->0} (sin x)/x",
			"type":              "short_answer",
			"options":           []interface{}{},
			"correct_answer":    "1",
			"difficulty":        2,
			"reference_outline": "Use the standard limit sin(x)/x -> 1 as x->0.",
			"knowledge_points":  []interface{}{"limits", "trigonometric limits"},
			"isomorphic_group":  "group_limit_sin_over_x",
			"topic":             tp,
			"is_fallback":       true,
		},
		{
			"id":                "draft_derivative_x3",
			"stem":              "Compute d/dx of x^3",
			"type":              "short_answer",
			"options":           []interface{}{},
			"correct_answer":    "3x^2",
			"difficulty":        1,
			"reference_outline": "Power rule: d/dx x^n = n x^{n-1}.",
			"knowledge_points":  []interface{}{"derivatives", "power rule"},
			"isomorphic_group":  "group_derivative_power_rule",
			"topic":             tp,
			"is_fallback":       true,
		},
		{
			"id":                "draft_chain_rule_sin_x2",
			"stem":              "Compute d/dx of sin(x^2)",
			"type":              "short_answer",
			"options":           []interface{}{},
			"correct_answer":    "2x cos(x^2)",
			"difficulty":        3,
			"reference_outline": "Chain rule: derivative of sin(u) is cos(u) * du/dx.",
			"knowledge_points":  []interface{}{"chain rule", "trigonometric derivatives"},
			"isomorphic_group":  "group_chain_rule_trig",
			"topic":             tp,
			"is_fallback":       true,
		},
		{
			"id":                "draft_integral_x_0_1",
			"stem":              "Compute the definite integral: ∫_0^1 x dx",
			"type":              "short_answer",
			"options":           []interface{}{},
			"correct_answer":    "1/2",
			"difficulty":        2,
			"reference_outline": "Antiderivative of x is x^2/2; evaluate at bounds.",
			"knowledge_points":  []interface{}{"definite integrals", "Fundamental Theorem of Calculus"},
			"isomorphic_group":  "group_integral_linear",
			"topic":             tp,
			"is_fallback":       true,
		},
		{
			"id":   "draft_mcq_derivative_ln",
			"stem": "Which of the following is d/dx (ln x) for x>0?",
			"type": "multiple_choice",
			"options": []interface{}{
				map[string]interface{}{"id": "A", "text": "1/x"},
				map[string]interface{}{"id": "B", "text": "x"},
				map[string]interface{}{"id": "C", "text": "ln x"},
				map[string]interface{}{"id": "D", "text": "0"},
			},
			"correct_answer":    "A",
			"difficulty":        1,
			"reference_outline": "Derivative of natural log is 1/x.",
			"knowledge_points":  []interface{}{"logarithmic derivatives"},
			"isomorphic_group":  "group_derivative_log",
			"topic":             tp,
			"is_fallback":       true,
		},
		{
			"id":                "draft_product_rule_x_ex",
			"stem":              "Compute d/dx of x e^x",
			"type":              "short_answer",
			"options":           []interface{}{},
			"correct_answer":    "e^x + x e^x",
			"difficulty":        2,
			"reference_outline": "Product rule: (uv)' = u'v + uv'.",
			"knowledge_points":  []interface{}{"product rule", "exponential derivatives"},
			"isomorphic_group":  "group_product_rule",
			"topic":             tp,
			"is_fallback":       true,
		},
		{
			"id":                "draft_limit_e",
			"stem":              "Evaluate lim_{n->∞} (1 + 1/n)^n",
			"type":              "short_answer",
			"options":           []interface{}{},
			"correct_answer":    "e",
			"difficulty":        3,
			"reference_outline": "Definition of e via compound interest limit.",
			"knowledge_points":  []interface{}{"limits", "number e"},
			"isomorphic_group":  "group_limit_e",
			"topic":             tp,
			"is_fallback":       true,
		},
	}
}

// BuildFallbackQuestions 从兜底题池循环取 count 道题，id 追加序号后缀保证唯一
func BuildFallbackQuestions(topic string, count int) []map[string]interface{} {
	pool := fallbackPool(topic)
	result := make([]map[string]interface{}, 0, count)
	for i := 0; i < count; i++ {
		base := pool[i%len(pool)]
		clone := make(map[string]interface{}, len(base)+1)
		for k, v := range base {
			clone[k] = v
		}
		clone["id"] = fmt.Sprintf("%s_%d", base["id"], i+1)
		result = append(result, clone)
	}
	return result
}
