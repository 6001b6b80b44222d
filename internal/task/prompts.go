package task

// Prompts share a contract: the model sees the three ground-truth texts,
// must phrase questions as if addressed to someone watching the raw video,
// and must answer with a bare JSON list of question objects. Questions that
// quote or mention the captions leak the ground truth, so every prompt
// forbids words like "caption", "transcript", or "description" in the
// question text.

const outputContract = `Return ONLY a JSON list. Each element must have exactly these keys:
  "question": the question text,
  "options": an object with keys "A", "B", "C", "D",
  "correct_answer_key": one of "A", "B", "C", "D",
  "gold_reasoning": a short explanation of why the correct option is right, grounded in what is seen and heard.
No markdown fences, no prose before or after the list.`

const causalSystemPrompt = `You write multiple-choice benchmark questions that test causal reasoning over a music performance video. You are given a visual description, an audio description, and a speech transcript of the same clip.

Write exactly 2 questions. Each question must require linking a visible event to an audible consequence, or an audible event to a visible cause. A question that can be answered from vision alone or audio alone is invalid.

Rules:
- Phrase every question as if the reader is watching the video itself. Never use the words "caption", "description", or "transcript" in a question or option.
- Wrong options must be plausible: same topic, same vocabulary level, wrong causal link.
- Exactly one option is correct.

` + outputContract

const causalUserTemplate = `Video ID: {{.VideoID}}

Visual description:
{{.VisualCaption}}

Audio description:
{{.AudioCaption}}

Speech transcript:
{{.Transcript}}

Write the 2 causal reasoning questions now.`

const performerSkillSystemPrompt = `You write multiple-choice benchmark questions that profile performer skill in a music performance video. You are given a visual description, an audio description, and a speech transcript of the same clip.

Write exactly 2 questions. Skill judgments must rest on concrete evidence: steadiness of tempo, cleanness of articulation, intonation, hand position, recovery from mistakes. Never ask for a bare opinion ("is the performer good?"); always tie the judgment to an observable or audible cue.

Rules:
- Phrase every question as if the reader is watching the video itself. Never use the words "caption", "description", or "transcript" in a question or option.
- If the clip contains more than one performer or more than one take, comparisons between them are the strongest questions.
- Wrong options must describe skill levels or cues that the clip contradicts.
- Exactly one option is correct.

` + outputContract

const performerSkillUserTemplate = `Video ID: {{.VideoID}}

Visual description:
{{.VisualCaption}}

Audio description:
{{.AudioCaption}}

Speech transcript:
{{.Transcript}}

Write the 2 performer skill questions now.`

const pitchTimbreSystemPrompt = `You write multiple-choice benchmark questions about pitch and timbre in a music performance video. You are given a visual description, an audio description, and a speech transcript of the same clip.

Write exactly 3 questions. Favor comparative questions: which of two passages is higher, which instrument sounds brighter, how the tone changes when the player alters technique. Each question must require actually listening; a question answerable from the visuals alone is invalid.

Rules:
- Phrase every question as if the reader is watching the video itself. Never use the words "caption", "description", or "transcript" in a question or option.
- Use precise but accessible vocabulary (higher/lower, brighter/darker, warm, nasal, percussive). Avoid notation the clip does not support.
- Exactly one option is correct.

` + outputContract

const pitchTimbreUserTemplate = `Video ID: {{.VideoID}}

Visual description:
{{.VisualCaption}}

Audio description:
{{.AudioCaption}}

Speech transcript:
{{.Transcript}}

Write the 3 pitch and timbre questions now.`

const tempoSyncSystemPrompt = `You write one multiple-choice benchmark question about audio-visual tempo synchronization in a music performance video. You are given a visual description, an audio description, a speech transcript, and the ground-truth alignment status of the clip: either "Aligned" (the audio matches the visible playing) or "Misaligned" (the audio track does not match the visible playing).

Write exactly 1 question asking whether the sound matches what the performer is visibly doing, pointing at a concrete cue (bow strokes, strumming hand, drum hits, key presses). The correct option must agree with the ground-truth status; the distractors must assert the opposite status or an unsupported cue.

Rules:
- Phrase the question as if the reader is watching the video itself. Never use the words "caption", "description", "transcript", or "ground truth" in the question or options.
- Do not always place the correct option at the same letter. Vary the position of the correct answer.
- Exactly one option is correct.

` + outputContract

const tempoSyncUserTemplate = `Video ID: {{.VideoID}}
Alignment status: {{.SyncStatus}}

Visual description:
{{.VisualCaption}}

Audio description:
{{.AudioCaption}}

Speech transcript:
{{.Transcript}}

Write the 1 synchronization question now.`

const unanswerableSystemPrompt = `You write multiple-choice benchmark questions that test whether a model admits when a music performance video does not contain the answer. You are given a visual description, an audio description, and a speech transcript of the same clip.

Write exactly 2 questions. Each question must sound natural and on-topic but ask about something the clip genuinely does not show or play (the brand of an unseen instrument, the name of a piece never stated, an event after the clip ends). The correct option must state that the video does not provide this information. The distractors must be confident, specific, and wrong.

Rules:
- Phrase every question as if the reader is watching the video itself. Never use the words "caption", "description", or "transcript" in a question or option.
- The unanswerable premise must not contradict the clip; it must simply be absent from it.
- Exactly one option is correct, and it is the one that declines to answer.

` + outputContract

const unanswerableUserTemplate = `Video ID: {{.VideoID}}

Visual description:
{{.VisualCaption}}

Audio description:
{{.AudioCaption}}

Speech transcript:
{{.Transcript}}

Write the 2 unanswerable questions now.`

const implicitDistractionsSystemPrompt = `You write multiple-choice benchmark questions for music performance clips that contain a distracting event: an interruption, an off-screen noise, an edit, or a second sound source competing with the performance. You are given a visual description, an audio description, and a speech transcript of the same clip.

Write exactly 2 questions. Each question must require separating the performance from the distraction: what the performer kept doing through the interruption, which sound belongs to the instrument and which does not, how the performance resumed afterward.

Rules:
- Phrase every question as if the reader is watching the video itself. Never use the words "caption", "description", or "transcript" in a question or option.
- Distractor options should confuse the interruption with the performance, or misattribute a sound.
- Exactly one option is correct.

` + outputContract

const implicitDistractionsUserTemplate = `Video ID: {{.VideoID}}

Visual description:
{{.VisualCaption}}

Audio description:
{{.AudioCaption}}

Speech transcript:
{{.Transcript}}

Write the 2 distraction questions now.`
