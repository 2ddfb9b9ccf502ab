package engine

import "github.com/arogya-health/arogya/internal/models"

// supportedLanguages is the fixed language catalogue offered at the start of
// every consultation.
var supportedLanguages = []models.Language{
	{Code: models.LanguageEnglish, Name: "English", NativeName: "English"},
	{Code: models.LanguageHindi, Name: "Hindi", NativeName: "हिन्दी"},
	{Code: models.LanguageKannada, Name: "Kannada", NativeName: "ಕನ್ನಡ"},
	{Code: models.LanguageMarathi, Name: "Marathi", NativeName: "मराठी"},
	{Code: models.LanguageTelugu, Name: "Telugu", NativeName: "తెలుగు"},
	{Code: models.LanguageTamil, Name: "Tamil", NativeName: "தமிழ்"},
	{Code: models.LanguageBengali, Name: "Bengali", NativeName: "বাংলা"},
	{Code: models.LanguageGujarati, Name: "Gujarati", NativeName: "ગુજરાતી"},
}

// emergencyKeywords lists red-flag phrases per language. Matching is
// case-insensitive substring containment against the user message.
var emergencyKeywords = map[models.LanguageCode][]string{
	models.LanguageEnglish: {
		"chest pain",
		"can't breathe",
		"crushing pain",
		"severe bleeding",
		"suicidal thoughts",
		"slurred speech",
		"sudden weakness",
	},
	models.LanguageHindi: {
		"सीने में दर्द",
		"सांस नहीं आ रही",
		"तेज खून बह रहा है",
	},
}

// symptomKeywords drives the simple keyword extraction used to seed the
// health guide. Matching is substring-based against user messages.
var symptomKeywords = []string{
	"pain", "ache", "fever", "cough", "headache", "nausea",
	"vomiting", "diarrhea", "constipation", "fatigue", "weakness",
	"dizziness", "rash", "swelling", "bleeding",
}

const welcomeHindi = `नमस्ते! 🙏 मैं डॉ. आरोग्य हूं, आपका व्यक्तिगत स्वास्थ्य सहायक।

मुझे आपकी स्वास्थ्य संबंधी समस्या समझने और आपको बेहतर महसूस कराने में खुशी होगी।

मैं आपसे कुछ सवाल पूछूंगा ताकि आपकी स्थिति को बेहतर तरीके से समझ सकूं। इसके बाद, मैं आपके लिए एक पूरा स्वास्थ्य गाइड तैयार करूंगा जो आपको डॉक्टर के पास जाने के लिए तैयार करेगा।

⚠️ महत्वपूर्ण: मैं एक AI सहायक हूं, डॉक्टर नहीं। यदि यह मेडिकल इमरजेंसी है, तो कृपया तुरंत नजदीकी अस्पताल जाएं।

कृपया अपनी स्वास्थ्य समस्या के बारे में बताएं।`

const welcomeEnglish = `Hello! 🙏 I'm Dr. Arogya, your personal health assistant.

I'm here to help you understand your health concerns and feel better.

I'll ask you a few questions to understand your condition better. Based on your answers, I will prepare a complete health guide to help you feel more prepared for your doctor's visit. This will include potential next steps, lifestyle advice, and even some trusted दादी माँ के नुस्खे (grandmother's remedies).

⚠️ Important: I am an AI assistant, not a human doctor. If this is a medical emergency, please stop now and call your nearest hospital immediately.

Please tell me about your health concern.`

const emergencyHindi = `🚨 आपातकाल का संकेत! 🚨

आपने जो लक्षण बताए हैं, वे गंभीर हो सकते हैं। कृपया तुरंत:

1. नजदीकी अस्पताल जाएं या 102/108 पर कॉल करें
2. परिवार के किसी सदस्य को तुरंत बताएं
3. यह बातचीत रोकें और चिकित्सा सहायता लें

आपका स्वास्थ्य सबसे महत्वपूर्ण है। देर न करें!`

const emergencyEnglish = `🚨 EMERGENCY ALERT! 🚨

Based on what you've described, it is very important that you seek medical help immediately. Please:

1. Contact your nearest emergency services or go to the hospital NOW
2. Call a family member or friend immediately
3. Stop this conversation and get medical attention

Your health is the top priority. Do not delay!`

const fallbackHindi = "मुझे खुशी होगी आपकी मदद करने में, लेकिन तकनीकी समस्या के कारण मैं अभी जवाब नहीं दे सकता। कृपया डॉक्टर से संपर्क करें।"

const fallbackEnglish = "I'd be happy to help you, but I'm experiencing technical difficulties. Please consult with a healthcare professional for your concerns."

// WelcomeMessage returns the localized greeting delivered after language
// binding. Languages without a dedicated translation fall back to English.
func WelcomeMessage(lang models.LanguageCode) string {
	if lang == models.LanguageHindi {
		return welcomeHindi
	}
	return welcomeEnglish
}

// EmergencyResponse returns the localized emergency alert text.
func EmergencyResponse(lang models.LanguageCode) string {
	if lang == models.LanguageHindi {
		return emergencyHindi
	}
	return emergencyEnglish
}

// FallbackResponse returns the localized reply used when response generation
// fails.
func FallbackResponse(lang models.LanguageCode) string {
	if lang == models.LanguageHindi {
		return fallbackHindi
	}
	return fallbackEnglish
}

// traditionalRemedies maps extracted symptoms to home remedy entries.
var traditionalRemedies = map[string][]models.TraditionalRemedy{
	"cough": {
		{
			Name:        "Haldi Doodh (Golden Milk)",
			Ingredients: []string{"1 cup warm milk", "1/2 tsp turmeric", "1/4 tsp black pepper", "honey to taste"},
			Preparation: "Mix turmeric and black pepper in warm milk. Add honey.",
			Usage:       "Drink before bedtime",
			Benefits:    "Anti-inflammatory properties help soothe throat and reduce cough",
			Language:    models.LanguageEnglish,
		},
	},
	"indigestion": {
		{
			Name:        "Ajwain Water",
			Ingredients: []string{"1 tsp ajwain (carom seeds)", "1 cup warm water", "pinch of salt"},
			Preparation: "Boil ajwain in water for 5 minutes, strain and add salt",
			Usage:       "Drink after meals",
			Benefits:    "Helps improve digestion and reduces bloating",
			Language:    models.LanguageEnglish,
		},
	},
}

// wellnessRemedy is the catch-all remedy included when no symptom-specific
// entry matches.
func wellnessRemedy(lang models.LanguageCode) models.TraditionalRemedy {
	return models.TraditionalRemedy{
		Name:        "General Wellness Tea",
		Ingredients: []string{"Ginger", "Honey", "Warm water"},
		Preparation: "Boil ginger in water, add honey",
		Usage:       "Drink warm, twice daily",
		Benefits:    "Supports general wellness and immunity",
		Language:    lang,
	}
}
