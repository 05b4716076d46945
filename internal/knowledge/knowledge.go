package knowledge

import "strings"

// Document is one entry of the static knowledge table backing the chat
// assistant's retrieval step.
type Document struct {
	Key         string
	Keywords    []string
	Filename    string
	Title       string
	Description string
}

// Base is a plain ordered list. The table is small enough that retrieval is a
// linear scan; matches come back in table order, all of them, no dedup.
type Base []Document

func Default() Base {
	return Base{
		{
			Key:         "collaboration guide",
			Keywords:    []string{"collaboration", "teamwork", "how to collaborate", "group project"},
			Filename:    "guides/2024-2025-FALL-SPRING-SUMMER-ACADEMIC-CALENDAR.pdf",
			Title:       "Academic Calendar 2024-2025",
			Description: "This guide provides important dates and deadlines for the 2024-2025 academic year.",
		},
		{
			Key:         "submission guidelines",
			Keywords:    []string{"submission", "guidelines", "how to submit", "project requirements"},
			Filename:    "guides/SOFTWARE-ENGINEERING-PROGRAM-CURRICULUM.pdf",
			Title:       "Software Engineering Program Curriculum",
			Description: "This document outlines the curriculum for the Software Engineering program, including course descriptions and requirements.",
		},
		{
			Key:         "academic integrity policy",
			Keywords:    []string{"plagiarism", "academic honesty", "integrity policy"},
			Filename:    "policies/academic_integrity.pdf",
			Title:       "Academic Integrity Policy",
			Description: "Review CodeNest's policy on academic integrity and plagiarism.",
		},
	}
}

// Match returns every document with at least one keyword appearing as a
// case-insensitive substring of message.
func (b Base) Match(message string) []Document {
	messageLower := strings.ToLower(message)

	var matches []Document

	for _, doc := range b {
		for _, keyword := range doc.Keywords {
			if strings.Contains(messageLower, keyword) {
				matches = append(matches, doc)
				break
			}
		}
	}

	return matches
}
