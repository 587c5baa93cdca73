package emotion

import "strings"

// Label 表示情绪分类器可以返回的粗粒度情绪标签。
type Label string

const (
	Anger    Label = "anger"
	Disgust  Label = "disgust"
	Fear     Label = "fear"
	Joy      Label = "joy"
	Neutral  Label = "neutral"
	Sadness  Label = "sadness"
	Surprise Label = "surprise"
)

// Labels lists the closed label set in a fixed order. Ties are broken by this order.
var Labels = []Label{Anger, Disgust, Fear, Joy, Neutral, Sadness, Surprise}

// ParseLabel maps a provider label onto the closed set.
func ParseLabel(raw string) (Label, bool) {
	normalized := Label(strings.ToLower(strings.TrimSpace(raw)))
	for _, label := range Labels {
		if label == normalized {
			return label, true
		}
	}
	return Neutral, false
}

var keywordBuckets = map[Label][]string{
	Anger: {
		"angry", "furious", "rage", "mad at", "annoyed", "pissed", "outrage", "hate", "irritated",
		"fed up", "livid", "sick of", "so done",
	},
	Disgust: {
		"disgust", "gross", "nasty", "revolting", "yuck", "ew", "repulsive", "sickening", "vile",
	},
	Fear: {
		"afraid", "scared", "fear", "terrified", "worried", "anxious", "nervous", "panic", "frightened",
		"dread", "uneasy",
	},
	Joy: {
		"happy", "glad", "great", "awesome", "love", "thanks", "thank you", "excited", "wonderful",
		"delighted", "yay", "lol", "haha", "fantastic",
	},
	Sadness: {
		"sad", "unhappy", "cry", "crying", "depressed", "lonely", "upset", "hurt", "miserable",
		"heartbroken", "down", "grief", "miss",
	},
	Surprise: {
		"wow", "amazing", "unbelievable", "no way", "surprised", "shocked", "whoa", "can't believe",
		"omg",
	},
}

var punctuationBoost = map[Label]int{
	Joy:      1,
	Surprise: 2,
}

// Analyze 根据用户话语的关键词推断情绪，无明显情绪时返回 Neutral。
func Analyze(text string) Label {
	normalized := strings.TrimSpace(strings.ToLower(text))
	if normalized == "" {
		return Neutral
	}

	padded := " " + strings.Join(strings.FieldsFunc(normalized, isSeparator), " ") + " "

	scores := make(map[Label]int)
	for label, keywords := range keywordBuckets {
		for _, word := range keywords {
			if strings.Contains(padded, " "+word+" ") {
				scores[label] += 3
			}
		}
	}

	// Exclamations only sharpen an emotion that is already present.
	if exclamations := strings.Count(text, "!"); exclamations > 0 {
		for label, boost := range punctuationBoost {
			if scores[label] > 0 {
				scores[label] += exclamations * boost
			}
		}
	}

	best := Neutral
	bestScore := 0
	for _, label := range Labels {
		if scores[label] > bestScore {
			best = label
			bestScore = scores[label]
		}
	}
	return best
}

func isSeparator(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '\'':
		return false
	case r > 127:
		return false
	}
	return true
}
