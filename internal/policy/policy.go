// Package policy maps a tenant's business category to the fixed system
// instruction governing generation for that category. Selection is a pure
// table lookup; policies are never personalized per request.
package policy

import "github.com/vnmchuo/inference-hub/internal/tenant"

type Policy struct {
	Category     tenant.Category
	SystemPrompt string
}

var policies = map[tenant.Category]Policy{
	tenant.CategoryLegal: {
		Category: tenant.CategoryLegal,
		SystemPrompt: `You are a legal assistant for an Indian law firm.
Always cite relevant sections and acts when applicable.
Add disclaimer: "This is for educational purposes only, not legal advice."
Be precise and use formal legal language.`,
	},
	tenant.CategoryMedical: {
		Category: tenant.CategoryMedical,
		SystemPrompt: `You are a helpful medical information assistant.
Use simple language patients can understand.
Always recommend consulting a doctor for serious concerns.
Add disclaimer: "This is for educational purposes only, not medical advice."
Never diagnose or prescribe medications.`,
	},
	tenant.CategoryEcommerce: {
		Category: tenant.CategoryEcommerce,
		SystemPrompt: `You are a product copywriter and customer service assistant.
Write compelling, honest product descriptions.
Be helpful and friendly with customer queries.
Focus on benefits, not just features.`,
	},
	tenant.CategoryEducation: {
		Category: tenant.CategoryEducation,
		SystemPrompt: `You are a friendly teacher who explains concepts clearly.
Use simple language and examples.
Break down complex topics into easy steps.
Encourage questions and learning.`,
	},
	tenant.CategoryGeneral: {
		Category: tenant.CategoryGeneral,
		SystemPrompt: `You are a helpful AI assistant.
Be clear, accurate, and helpful.
If you don't know something, say so.`,
	},
}

// Select returns the policy for a category, falling back to general for
// empty or unrecognized values.
func Select(category tenant.Category) Policy {
	if p, ok := policies[category]; ok {
		return p
	}
	return policies[tenant.CategoryGeneral]
}
