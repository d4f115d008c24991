package providers

import (
	"strings"
	"time"
)

// Offline fallbacks. Every table lookup is deterministic in its inputs so
// the mock path is stable across calls and testable.

var guidancePool = []string{
	"Begin where you stand. As the Gita teaches, you have a right to your actions alone, never to their fruits. Offer today's effort without anxiety for the outcome, and peace will follow of its own accord.",
	"The mind is restless, Arjuna admitted, and Krishna agreed - but he also promised that practice and detachment tame it. Sit quietly for a few breaths each morning; steadiness grows from small, repeated acts.",
	"Whatever you offer with devotion - a leaf, a flower, fruit or water - is received. It is not the size of the offering that matters but the heart behind it. Let your day itself become the offering.",
	"As rivers flow into the ocean yet the ocean is never disturbed, let experiences flow into you without agitation. Equanimity is not indifference; it is depth.",
}

func mockGuidance(prompt string) AIText {
	idx := 0
	for _, r := range prompt {
		idx += int(r)
	}
	return AIText{
		Text:     guidancePool[idx%len(guidancePool)],
		Provider: MockProvider,
	}
}

type mockShlokaEntry struct {
	Sanskrit        string
	Transliteration string
	Meaning         string
	Reference       string
}

var shlokaTable = map[string]mockShlokaEntry{
	"peace": {
		Sanskrit:        "ॐ शान्तिः शान्तिः शान्तिः",
		Transliteration: "om shantih shantih shantih",
		Meaning:         "May there be peace in body, mind and spirit.",
		Reference:       "Shanti Mantra",
	},
	"anxiety": {
		Sanskrit:        "कर्मण्येवाधिकारस्ते मा फलेषु कदाचन",
		Transliteration: "karmanye vadhikaraste ma phaleshu kadachana",
		Meaning:         "You have a right to your actions alone, never to their fruits; act without anxiety for results.",
		Reference:       "Bhagavad Gita 2.47",
	},
	"courage": {
		Sanskrit:        "क्लैब्यं मा स्म गमः पार्थ नैतत्त्वय्युपपद्यते",
		Transliteration: "klaibyam ma sma gamah partha naitat tvayy upapadyate",
		Meaning:         "Yield not to weakness of heart; it does not befit you. Shake off faintness and arise.",
		Reference:       "Bhagavad Gita 2.3",
	},
	"gratitude": {
		Sanskrit:        "त्वमेव माता च पिता त्वमेव",
		Transliteration: "tvameva mata cha pita tvameva",
		Meaning:         "You alone are mother and father, friend and companion, knowledge and wealth - you are everything to me.",
		Reference:       "Pandava Gita",
	},
	"focus": {
		Sanskrit:        "योगस्थः कुरु कर्माणि सङ्गं त्यक्त्वा धनञ्जय",
		Transliteration: "yogasthah kuru karmani sangam tyaktva dhananjaya",
		Meaning:         "Established in yoga, perform your duties abandoning attachment, even-minded in success and failure.",
		Reference:       "Bhagavad Gita 2.48",
	},
}

func mockShloka(emotion string) Shloka {
	key := strings.ToLower(strings.TrimSpace(emotion))
	entry, ok := shlokaTable[key]
	if !ok {
		entry = shlokaTable["peace"]
	}
	return Shloka{
		Emotion:         key,
		Sanskrit:        entry.Sanskrit,
		Transliteration: entry.Transliteration,
		Meaning:         entry.Meaning,
		Reference:       entry.Reference,
		Provider:        MockProvider,
	}
}

var quotePool = []Quote{
	{Text: "You have the right to work, but never to the fruit of work.", Author: "Bhagavad Gita"},
	{Text: "The soul is neither born, and nor does it die.", Author: "Bhagavad Gita"},
	{Text: "There is neither this world, nor the world beyond, nor happiness for the one who doubts.", Author: "Bhagavad Gita"},
	{Text: "Where there is love there is life.", Author: "Mahatma Gandhi"},
	{Text: "Arise, awake, and stop not till the goal is reached.", Author: "Swami Vivekananda"},
	{Text: "In a day, when you don't come across any problems, you can be sure that you are travelling in a wrong path.", Author: "Swami Vivekananda"},
	{Text: "The mind is everything. What you think you become.", Author: "Gautama Buddha"},
}

func mockQuote(day time.Time) Quote {
	q := quotePool[day.YearDay()%len(quotePool)]
	q.Provider = MockProvider
	return q
}

var horoscopePool = []string{
	"A favourable alignment supports new beginnings today. Trust your first instinct and keep your commitments simple.",
	"Patience rewards you today. An old effort quietly bears fruit; acknowledge the people who helped it along.",
	"Guard your energy in the afternoon. A short walk or a few minutes of quiet breathing restores your balance.",
	"Conversations flow easily today. Say the kind thing you have been postponing.",
	"Discipline is your ally. Finish one lingering task before taking up anything new and the day will feel light.",
}

var luckyColors = []string{"Saffron", "White", "Green", "Yellow", "Red", "Blue", "Maroon"}

func mockHoroscope(sign, period string, day time.Time) Horoscope {
	seed := day.YearDay()
	for _, r := range sign {
		seed += int(r)
	}
	return Horoscope{
		Sign:          strings.ToLower(sign),
		Period:        period,
		Date:          day.Format("2006-01-02"),
		Prediction:    horoscopePool[seed%len(horoscopePool)],
		LuckyNumber:   []string{"3", "7", "9", "12", "21"}[seed%5],
		LuckyColor:    luckyColors[seed%len(luckyColors)],
		Mood:          defaultMood,
		Compatibility: defaultCompatibility,
		Provider:      MockProvider,
	}
}

var tithiNames = []string{
	"Pratipada", "Dwitiya", "Tritiya", "Chaturthi", "Panchami", "Shashthi",
	"Saptami", "Ashtami", "Navami", "Dashami", "Ekadashi", "Dwadashi",
	"Trayodashi", "Chaturdashi", "Purnima", "Pratipada", "Dwitiya", "Tritiya",
	"Chaturthi", "Panchami", "Shashthi", "Saptami", "Ashtami", "Navami",
	"Dashami", "Ekadashi", "Dwadashi", "Trayodashi", "Chaturdashi", "Amavasya",
}

var nakshatraNames = []string{
	"Ashwini", "Bharani", "Krittika", "Rohini", "Mrigashira", "Ardra",
	"Punarvasu", "Pushya", "Ashlesha", "Magha", "Purva Phalguni",
	"Uttara Phalguni", "Hasta", "Chitra", "Swati", "Vishakha", "Anuradha",
	"Jyeshtha", "Mula", "Purva Ashadha", "Uttara Ashadha", "Shravana",
	"Dhanishta", "Shatabhisha", "Purva Bhadrapada", "Uttara Bhadrapada", "Revati",
}

var yogaNames = []string{
	"Vishkambha", "Priti", "Ayushman", "Saubhagya", "Shobhana", "Atiganda",
	"Sukarma", "Dhriti", "Shula", "Ganda", "Vriddhi", "Dhruva", "Vyaghata",
	"Harshana", "Vajra", "Siddhi", "Vyatipata", "Variyana", "Parigha", "Shiva",
	"Siddha", "Sadhya", "Shubha", "Shukla", "Brahma", "Indra", "Vaidhriti",
}

var karanaNames = []string{
	"Bava", "Balava", "Kaulava", "Taitila", "Garaja", "Vanija", "Vishti",
	"Shakuni", "Chatushpada", "Naga", "Kimstughna",
}

// mockPanchang derives the day's elements from the date alone. It is a
// calendar approximation, not an ephemeris, but it is stable and plausible
// for offline use.
func mockPanchang(day time.Time) Panchang {
	epoch := time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)
	days := int(day.Sub(epoch).Hours() / 24)
	if days < 0 {
		days = -days
	}
	return Panchang{
		Date:      day.Format("2006-01-02"),
		Weekday:   day.Weekday().String(),
		Tithi:     tithiNames[days%len(tithiNames)],
		Nakshatra: nakshatraNames[days%len(nakshatraNames)],
		Yoga:      yogaNames[days%len(yogaNames)],
		Karana:    karanaNames[days%len(karanaNames)],
		Sunrise:   "06:05",
		Sunset:    "18:32",
		Provider:  MockProvider,
	}
}
