package extractor

import "time"

// Word lists are in folded form (lowercase, no accents), the shape the
// normalizer produces.

var yesPhrases = []string{
	"ja", "jazeker", "ja hoor", "ja graag", "ja klopt", "zeker", "klopt", "dat klopt",
	"correct", "prima", "goed", "is goed", "dat is goed", "akkoord", "oke", "ok", "okay",
	"precies", "inderdaad", "yes", "yes please", "sure", "right", "that's right",
	"that's correct", "sounds good", "exactly",
}

var noPhrases = []string{
	"nee", "nee hoor", "nee dank je", "neen", "niet", "klopt niet", "dat klopt niet",
	"niet correct", "fout", "no", "no thanks", "not", "not really", "wrong", "that's wrong",
	"incorrect",
}

var cancelPhrases = []string{
	"annuleren", "annuleer", "afzeggen", "afmelden", "cancel", "cancelen", "cancellation",
	"afspraak afzeggen", "cancel my appointment",
}

var reschedulePhrases = []string{
	"verzetten", "verplaatsen", "omboeken", "verschuiven", "reschedule",
	"afspraak wijzigen", "afspraak veranderen", "move my appointment", "change my appointment",
}

var donePhrases = []string{
	"dat was het", "dat was alles", "dat is alles", "dat is het", "verder niets", "verder niks",
	"niets meer", "niks meer", "that's all", "that is all", "that's it", "that was it",
	"nothing else", "no more",
}

var numberWords = map[string]int{
	"een": 1, "eentje": 1, "twee": 2, "drie": 3, "vier": 4, "vijf": 5, "zes": 6, "zeven": 7,
	"acht": 8, "negen": 9, "tien": 10, "elf": 11, "twaalf": 12, "dertien": 13, "veertien": 14,
	"vijftien": 15, "zestien": 16, "zeventien": 17, "achttien": 18, "negentien": 19, "twintig": 20,
	"one": 1, "two": 2, "three": 3, "four": 4, "five": 5, "six": 6, "seven": 7, "eight": 8,
	"nine": 9, "ten": 10, "eleven": 11, "twelve": 12, "thirteen": 13, "fourteen": 14,
	"fifteen": 15, "sixteen": 16, "seventeen": 17, "eighteen": 18, "nineteen": 19, "twenty": 20,
}

// articles count as a quantity of one in front of an item, never as an hour.
var articleQuantities = map[string]int{"a": 1, "an": 1}

var weekdays = map[string]time.Weekday{
	"zondag": time.Sunday, "maandag": time.Monday, "dinsdag": time.Tuesday,
	"woensdag": time.Wednesday, "donderdag": time.Thursday, "vrijdag": time.Friday,
	"zaterdag": time.Saturday,
	"sunday":   time.Sunday, "monday": time.Monday, "tuesday": time.Tuesday,
	"wednesday": time.Wednesday, "thursday": time.Thursday, "friday": time.Friday,
	"saturday": time.Saturday,
}

var months = map[string]time.Month{
	"januari": time.January, "februari": time.February, "maart": time.March, "april": time.April,
	"mei": time.May, "juni": time.June, "juli": time.July, "augustus": time.August,
	"september": time.September, "oktober": time.October, "november": time.November,
	"december": time.December,
	"january":  time.January, "february": time.February, "march": time.March, "may": time.May,
	"june": time.June, "july": time.July, "august": time.August, "october": time.October,
}

// relativeDays is ordered longest phrase first.
var relativeDays = []struct {
	phrase string
	days   int
}{
	{"day after tomorrow", 2},
	{"overmorgen", 2},
	{"vandaag", 0},
	{"today", 0},
	{"morgen", 1},
	{"tomorrow", 1},
}

var morningMarkers = map[string]bool{
	"am": true, "ochtend": true, "ochtends": true, "morgens": true, "morgenochtend": true,
	"voormiddag": true, "morning": true,
}

var eveningMarkers = map[string]bool{
	"pm": true, "middag": true, "middags": true, "namiddag": true, "avond": true, "avonds": true,
	"vanavond": true, "vanmiddag": true, "afternoon": true, "evening": true, "tonight": true,
}

// timePrepositions may precede an hour ("om 3", "at 3").
var timePrepositions = map[string]bool{
	"om": true, "at": true, "rond": true, "rondom": true, "around": true, "tegen": true, "by": true,
}

var deliveryPhrases = []string{
	"laten bezorgen", "thuis bezorgen", "bezorgen", "bezorgd", "bezorging", "thuisbezorgen",
	"delivery", "deliver", "delivered", "deliver it",
}

var pickupPhrases = []string{
	"afhalen", "ophalen", "afhaal", "halen", "komen halen", "pick up", "pickup", "pick it up",
	"collect", "collection", "take away", "takeaway",
}

var nameIntros = []string{
	"mijn naam is", "de naam is", "naam is", "ik heet", "u spreekt met", "je spreekt met",
	"ik ben", "my name is", "the name is", "name is", "this is", "i'm", "i am",
}

var addressIntros = []string{
	"mijn adres is", "het adres is", "adres is", "ik woon op", "ik woon aan", "we wonen op",
	"my address is", "the address is", "address is", "i live at", "deliver to",
	"bezorgen op", "bezorgen aan",
}

var segmentBreaks = map[string]bool{"en": true, "and": true, "plus": true, "ook": true}

var withWords = map[string]bool{"met": true, "with": true, "extra": true}

var withoutWords = map[string]bool{"zonder": true, "without": true, "geen": true, "no": true}

// fillers carry no slot value on their own.
var fillers = map[string]bool{
	"ik": true, "wil": true, "wilde": true, "willen": true, "graag": true, "bestellen": true,
	"bestelling": true, "hebben": true, "mag": true, "de": true, "het": true, "alstublieft": true,
	"alsjeblieft": true, "dank": true, "dankjewel": true, "bedankt": true, "u": true, "je": true,
	"doe": true, "maar": true, "nog": true, "even": true, "mij": true, "me": true, "voor": true,
	"dan": true, "nou": true, "eh": true, "euh": true, "uh": true, "uhm": true, "um": true,
	"hallo": true, "hoi": true, "hi": true, "hello": true, "hey": true, "dag": true,
	"goedemiddag": true, "goedemorgen": true, "goedenavond": true, "goede": true,
	"please": true, "i": true, "would": true, "like": true, "want": true, "to": true,
	"order": true, "have": true, "can": true, "could": true, "get": true, "the": true,
	"some": true, "also": true, "thanks": true, "thank": true, "you": true, "then": true,
	"so": true, "well": true, "oh": true, "good": true, "of": true, "for": true, "we": true,
	"afspraak": true, "appointment": true, "maken": true, "make": true, "boeken": true,
	"book": true, "reserveren": true, "inplannen": true, "plannen": true, "een": true,
	"a": true, "an": true, "is": true, "er": true, "op": true, "in": true, "on": true,
	"met": true, "with": true, "zonder": true, "without": true, "keer": true, "x": true,
	"times": true, "uur": true, "o'clock": true, "om": true, "at": true,
	"wat": true, "welke": true, "jullie": true, "what": true, "which": true, "do": true,
	"does": true, "menu": true, "kaart": true, "ja": true, "yes": true,
}

// nameStops end a name captured after an introduction.
var nameStops = map[string]bool{
	"en": true, "and": true, "ik": true, "i": true, "wil": true, "want": true, "would": true,
	"graag": true, "om": true, "at": true, "voor": true, "for": true, "op": true, "on": true,
	"mijn": true, "my": true, "een": true, "a": true, "the": true, "het": true, "bel": true,
	"calling": true, "bellen": true, "hier": true, "here": true, "met": true, "with": true,
}
