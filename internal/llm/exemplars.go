package llm

import openai "github.com/sashabaranov/go-openai"

// Extractor few-shot exemplars. Each answering model fails in its own way:
// 3.5-class models ramble and restate choices, 4-class models hedge before
// committing, and assistants responses embed citation markers. The
// exemplars show the extractor what each looks like.

var gpt35ExtractorExemplars = []openai.ChatCompletionMessage{
	{
		Role: openai.ChatMessageRoleUser,
		Content: `<question>A 34-year-old patient presents with numbness in the thumb and index finger. What is the most likely diagnosis?
A. Cubital tunnel syndrome
B. Carpal tunnel syndrome
C. De Quervain tenosynovitis
D. Trigger finger
E. Dupuytren contracture</question>
<response>The symptoms described, numbness in the thumb and index finger, are classic for median nerve compression at the wrist. Option A involves the ulnar nerve, which affects the ring and small fingers. Option C causes radial-sided wrist pain. Options D and E involve the flexor tendons and palmar fascia. Therefore the answer is B, carpal tunnel syndrome.</response>`,
	},
	{
		Role:    openai.ChatMessageRoleAssistant,
		Content: "<finalAnswer>B</finalAnswer>",
	},
	{
		Role: openai.ChatMessageRoleUser,
		Content: `<question>Which structure is at greatest risk during release of the first dorsal compartment?
A. Radial artery
B. Median nerve
C. Superficial radial nerve
D. Ulnar nerve
E. Posterior interosseous nerve</question>
<response>There are several structures in the area and I cannot be certain which one is intended here. Both A and C are plausible given the anatomy of the region.</response>`,
	},
	{
		Role:    openai.ChatMessageRoleAssistant,
		Content: "<finalAnswer>Inconclusive</finalAnswer>",
	},
}

var gpt4ExtractorExemplars = []openai.ChatCompletionMessage{
	{
		Role: openai.ChatMessageRoleUser,
		Content: `<question>A patient has a scaphoid fracture at the proximal pole. What is the primary concern?
A. Malunion
B. Nonunion and avascular necrosis
C. Arthritis
D. Tendon rupture
E. Nerve injury</question>
<response>While several complications can follow a scaphoid fracture, the retrograde blood supply makes the proximal pole uniquely vulnerable. Although malunion (A) and arthritis (C) occur, they are secondary. The primary concern is B: nonunion and avascular necrosis.</response>`,
	},
	{
		Role:    openai.ChatMessageRoleAssistant,
		Content: "<finalAnswer>B</finalAnswer>",
	},
	{
		Role: openai.ChatMessageRoleUser,
		Content: `<question>What is the recommended initial management for a nondisplaced distal radius fracture?
A. Open reduction
B. External fixation
C. Cast immobilization
D. Percutaneous pinning
E. Arthroplasty</question>
<response>I want to note that treatment depends heavily on patient factors, and I cannot responsibly commit to a single option without more clinical detail.</response>`,
	},
	{
		Role:    openai.ChatMessageRoleAssistant,
		Content: "<finalAnswer>Inconclusive</finalAnswer>",
	},
}

var assistantExtractorExemplars = []openai.ChatCompletionMessage{
	{
		Role: openai.ChatMessageRoleUser,
		Content: `<question>What is the most common organism in cat-bite infections of the hand?
A. Staphylococcus aureus
B. Pasteurella multocida
C. Streptococcus pyogenes
D. Eikenella corrodens
E. Pseudomonas aeruginosa</question>
<response>Searching the knowledge base, cat-bite wounds are most frequently infected with Pasteurella multocida【12:0†question_4_reference_1.pdf】. The other organisms are seen in human bites or hospital settings. The best answer is B.</response>`,
	},
	{
		Role:    openai.ChatMessageRoleAssistant,
		Content: "<finalAnswer>B</finalAnswer>",
	},
	{
		Role: openai.ChatMessageRoleUser,
		Content: `<question>Which flap is preferred for fingertip coverage with exposed bone?
A. V-Y advancement
B. Cross-finger flap
C. Thenar flap
D. Groin flap
E. Free flap</question>
<response>The knowledge base did not return a definitive recommendation, and multiple flaps listed could be appropriate depending on the defect geometry.</response>`,
	},
	{
		Role:    openai.ChatMessageRoleAssistant,
		Content: "<finalAnswer>Inconclusive</finalAnswer>",
	},
}
