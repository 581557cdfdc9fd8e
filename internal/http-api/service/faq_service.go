package service

import "strings"

// FAQService answers free-text questions from a fixed knowledge base.
// Deterministic, no state, no I/O: the input is lowercased and tested
// against an ordered rule list, first match wins.
type FAQService interface {
	Answer(question string) string
}

type faqRule struct {
	keywords []string
	response string
}

type faqService struct {
	rules    []faqRule
	fallback string
}

// NewFAQService builds the responder. Rule order is significant and must
// not be reordered: an input matching several rules gets the earliest one.
func NewFAQService() FAQService {
	return &faqService{
		rules: []faqRule{
			{
				keywords: []string{"register", "sign up", "create account"},
				response: "To register, click on the 'Login' button at the top right and sign in. You'll then be asked to complete your profile.",
			},
			{
				keywords: []string{"donate", "give"},
				response: "If you want to donate an organ, sign up and navigate to the Donor Dashboard. Fill out your medical details and set your status to Active.",
			},
			{
				keywords: []string{"receive", "need", "get"},
				response: "To receive an organ, sign up and go to the Recipient Dashboard. Fill out the required details. You must be verified by an admin before you can contact donors.",
			},
			{
				keywords: []string{"verify", "verification", "approve"},
				response: "All accounts are manually verified by our administrative team. This process usually takes 1-2 business days. We will notify you once verified.",
			},
			{
				keywords: []string{"cost", "fee", "price", "money"},
				response: "The platform is completely free to use. We do not charge any fees for connecting donors and recipients.",
			},
			{
				keywords: []string{"hello", "hi ", "hey"},
				response: "Hello! I am the Donor Bridge Assistant. How can I help you today?",
			},
		},
		fallback: "I'm sorry, I couldn't quite understand that. I can help answer questions about registration, donating an organ, receiving an organ, or the verification process.",
	}
}

func (s *faqService) Answer(question string) string {
	lower := strings.ToLower(question)
	for _, rule := range s.rules {
		for _, keyword := range rule.keywords {
			if strings.Contains(lower, keyword) {
				return rule.response
			}
		}
	}
	return s.fallback
}
