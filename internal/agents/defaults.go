package agents

// Default structures per stage. These mirror the documented stage
// boundary payloads so downstream keyed access never hits a missing
// field, whatever the model chose to omit.

func validationDefaults() map[string]any {
	return map[string]any{
		"is_valid":               false,
		"has_work_experience":    false,
		"work_experience_count":  float64(0),
		"work_experience_issues": []any{},
		"has_education":          false,
		"education_count":        float64(0),
		"education_issues":       []any{},
		"has_project_materials":  false,
		"project_count":          float64(0),
		"project_issues":         []any{},
		"missing_sections":       []any{},
		"validation_summary":     "",
		"recommendations":        []any{},
	}
}

func analysisDefaults() map[string]any {
	return map[string]any{
		"ideal_candidate_profile": map[string]any{
			"industry_background": "",
			"experience_level":    "",
			"core_skills":         []any{},
			"nice_to_have":        []any{},
		},
		"candidate_profile": map[string]any{
			"industry_background": "",
			"experience_summary":  "",
			"key_skills":          []any{},
		},
		"match_assessment": map[string]any{
			"overall_match_score": float64(0),
			"match_level":         "",
			"industry_match":      map[string]any{"score": float64(0), "strengths": []any{}, "gaps": []any{}},
			"experience_match":    map[string]any{"score": float64(0), "strengths": []any{}, "gaps": []any{}},
			"skills_match":        map[string]any{"score": float64(0), "strengths": []any{}, "gaps": []any{}},
		},
		"resume_quality_issues": map[string]any{
			"structure": []any{},
			"content":   []any{},
			"wording":   []any{},
		},
		"improvement_recommendations":       []any{},
		"project_materials_recommendations": []any{},
		"context_notes": map[string]any{
			"industry":               "",
			"seniority":              "",
			"special_considerations": []any{},
		},
	}
}

func packagingDefaults() map[string]any {
	return map[string]any{
		"selected_projects":      []any{},
		"skipped_projects":       []any{},
		"notes_for_resume_agent": []any{},
	}
}

func optimizationDefaults() map[string]any {
	return map[string]any{
		"experience_replacements": []any{},
		"project_classification": map[string]any{
			"resume_adopted_projects":     []any{},
			"resume_not_adopted_projects": []any{},
		},
		"format_content_adjustments": []any{},
		"experience_optimizations":   []any{},
		"skills_section_optimization": map[string]any{
			"has_skills_section":  false,
			"current_skills":      []any{},
			"optimized_skills":    []any{},
			"category_label":      "",
			"optimization_reason": "",
		},
		"optimization_summary": map[string]any{
			"total_experiences_analyzed":              float64(0),
			"experiences_recommended_for_replacement": float64(0),
			"total_adjustments_suggested":             float64(0),
			"total_experiences_optimized":             float64(0),
			"skills_section_optimized":                false,
			"expected_match_score_improvement":        "0.0 points",
			"key_improvements":                        []any{},
		},
	}
}

func interviewDefaults() map[string]any {
	return map[string]any{
		"theme_1_behavioral_interview": map[string]any{
			"self_introduction": map[string]any{
				"paragraph_1":        "",
				"paragraph_2":        "",
				"paragraph_3":        "",
				"full_text":          "",
				"key_highlights":     []any{},
				"jd_alignment_notes": "",
			},
			"storytelling_example": map[string]any{
				"selected_project":         map[string]any{},
				"hook":                     "",
				"emergency":                "",
				"approach":                 "",
				"action":                   "",
				"impact":                   "",
				"reflection":               "",
				"full_storytelling_answer": "",
				"jd_skills_demonstrated":   []any{},
			},
			"top_10_behavioral_questions": []any{},
		},
		"theme_2_project_deep_dive": map[string]any{
			"selected_projects": []any{},
		},
		"theme_3_business_domain": map[string]any{
			"business_questions": []any{},
		},
		"preparation_summary": map[string]any{
			"total_behavioral_questions":  float64(0),
			"total_projects_analyzed":     float64(0),
			"total_technical_questions":   float64(0),
			"total_business_questions":    float64(0),
			"key_preparation_focus_areas": []any{},
		},
	}
}
