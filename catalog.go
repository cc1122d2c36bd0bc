/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

// Built-in content catalogs for every game mode. Secret content is drawn
// from these through the per-room Allocator so nothing repeats until a
// catalog has cycled.

// Location is a place plus the cover roles handed to non-impostors.
type Location struct {
	Name  string
	Roles []string
}

// WordPair holds the two-faction words: everyone shares Civilian except
// the impostor, who gets the confusingly similar Undercover word.
type WordPair struct {
	Civilian   string
	Undercover string
}

// Category groups items for the category+item mode; the impostor learns
// only the category.
type Category struct {
	Name  string
	Items []string
}

// QuestionPair is a pair of near-identical questions; the impostor
// answers the Odd one without knowing it differs.
type QuestionPair struct {
	Main string
	Odd  string
}

// WordlistProvider resolves community-submitted word lists that were
// approved and unlocked elsewhere. The session core only consumes them;
// an unknown or unapproved key means "use the built-in catalog".
type WordlistProvider interface {
	ApprovedWords(key string) ([]string, bool)
}

type staticWordlists map[string][]string

func (s staticWordlists) ApprovedWords(key string) ([]string, bool) {
	words, ok := s[key]
	if !ok || len(words) == 0 {
		return nil, false
	}
	return words, true
}

var secretWords = []string{
	"Airport",
	"Avalanche",
	"Bakery",
	"Ballet",
	"Bonfire",
	"Carnival",
	"Chess",
	"Circus",
	"Compass",
	"Dentist",
	"Desert",
	"Dinosaur",
	"Elevator",
	"Firefighter",
	"Fishing",
	"Glacier",
	"Hammock",
	"Harvest",
	"Helicopter",
	"Honey",
	"Iceberg",
	"Jungle",
	"Karaoke",
	"Lighthouse",
	"Magician",
	"Marathon",
	"Mermaid",
	"Microscope",
	"Moonlight",
	"Orchestra",
	"Origami",
	"Parachute",
	"Pirate",
	"Pyramid",
	"Robot",
	"Sandcastle",
	"Scarecrow",
	"Submarine",
	"Telescope",
	"Thunder",
	"Treasure",
	"Vampire",
	"Volcano",
	"Waterfall",
	"Windmill",
}

var locations = []Location{
	{"Airplane", []string{"Pilot", "Flight Attendant", "Air Marshal", "Tourist", "Businessperson", "Nervous Flyer", "Mechanic"}},
	{"Bank", []string{"Manager", "Teller", "Security Guard", "Robber", "Customer", "Armored Car Driver", "Consultant"}},
	{"Beach", []string{"Lifeguard", "Surfer", "Ice Cream Vendor", "Photographer", "Kite Flyer", "Beach Volleyball Player", "Tourist"}},
	{"Casino", []string{"Dealer", "Bouncer", "Gambler", "Bartender", "Card Counter", "Lounge Singer", "Pit Boss"}},
	{"Circus Tent", []string{"Acrobat", "Animal Trainer", "Clown", "Juggler", "Magician", "Ringmaster", "Visitor"}},
	{"Cruise Ship", []string{"Captain", "Waiter", "Musician", "Rich Passenger", "Cabin Steward", "Navigator", "Stowaway"}},
	{"Hospital", []string{"Doctor", "Nurse", "Surgeon", "Anesthesiologist", "Patient", "Intern", "Therapist"}},
	{"Movie Studio", []string{"Director", "Actor", "Camera Operator", "Costume Designer", "Producer", "Stunt Double", "Sound Engineer"}},
	{"Pirate Ship", []string{"Captain", "First Mate", "Cook", "Prisoner", "Cannoneer", "Sailor", "Cabin Boy"}},
	{"Polar Station", []string{"Biologist", "Expedition Leader", "Meteorologist", "Radio Operator", "Medic", "Geologist", "Cook"}},
	{"Restaurant", []string{"Chef", "Sommelier", "Waiter", "Food Critic", "Dishwasher", "Musician", "Customer"}},
	{"School", []string{"Teacher", "Principal", "Janitor", "Lunch Lady", "Student", "Gym Coach", "Security Guard"}},
	{"Space Station", []string{"Commander", "Engineer", "Scientist", "Doctor", "Space Tourist", "Robot Technician", "Pilot"}},
	{"Submarine", []string{"Captain", "Sonar Technician", "Cook", "Electrician", "Navigator", "Sailor", "Radio Operator"}},
	{"Supermarket", []string{"Cashier", "Butcher", "Janitor", "Security Guard", "Shelf Stocker", "Customer", "Manager"}},
	{"Theater", []string{"Director", "Actor", "Prompter", "Stagehand", "Usher", "Playwright", "Audience Member"}},
}

var wordPairs = []WordPair{
	{"Coffee", "Tea"},
	{"Piano", "Guitar"},
	{"Soccer", "Basketball"},
	{"Cat", "Dog"},
	{"Beach", "Pool"},
	{"Pizza", "Burger"},
	{"Train", "Subway"},
	{"Butter", "Margarine"},
	{"Novel", "Comic Book"},
	{"Lipstick", "Lip Balm"},
	{"Glasses", "Contact Lenses"},
	{"Honey", "Sugar"},
	{"Rain", "Snow"},
	{"Hotel", "Hostel"},
	{"Ship", "Boat"},
	{"Painter", "Sculptor"},
	{"Violin", "Cello"},
	{"Whale", "Dolphin"},
	{"Castle", "Palace"},
	{"Ballet", "Tango"},
	{"Chess", "Checkers"},
	{"Moon", "Star"},
	{"Bee", "Wasp"},
	{"River", "Lake"},
	{"Bread", "Cake"},
}

var categories = []Category{
	{"Animals", []string{"Elephant", "Penguin", "Kangaroo", "Octopus", "Owl", "Crocodile", "Panda", "Flamingo", "Hedgehog", "Sloth"}},
	{"Countries", []string{"Brazil", "Japan", "Iceland", "Egypt", "Canada", "Morocco", "Australia", "Peru", "Norway", "Thailand"}},
	{"Fruits", []string{"Mango", "Pineapple", "Watermelon", "Kiwi", "Pomegranate", "Papaya", "Cherry", "Fig", "Coconut", "Grape"}},
	{"Jobs", []string{"Firefighter", "Librarian", "Astronaut", "Plumber", "Judge", "Barber", "Farmer", "Tailor", "Architect", "Chef"}},
	{"Movies", []string{"Titanic", "Jaws", "Frozen", "Rocky", "Gladiator", "Casablanca", "Psycho", "Shrek", "Alien", "Up"}},
	{"Musical Instruments", []string{"Trumpet", "Harp", "Accordion", "Drums", "Flute", "Banjo", "Saxophone", "Tambourine", "Organ", "Ukulele"}},
	{"Sports", []string{"Tennis", "Boxing", "Surfing", "Archery", "Fencing", "Rowing", "Judo", "Curling", "Cricket", "Skateboarding"}},
	{"Vehicles", []string{"Tractor", "Ambulance", "Scooter", "Hot Air Balloon", "Tank", "Gondola", "Snowmobile", "Limousine", "Ferry", "Bulldozer"}},
}

var questionPairs = []QuestionPair{
	{"How many hours do you sleep per night?", "How many hours could you survive without your phone?"},
	{"What is your favorite season?", "What is your favorite holiday?"},
	{"How many countries have you visited?", "How many cities have you lived in?"},
	{"What superpower would you choose?", "What animal would you be?"},
	{"What did you eat for breakfast?", "What did you eat for dinner yesterday?"},
	{"How old were you when you learned to ride a bike?", "How old were you when you learned to swim?"},
	{"What is the best movie you saw this year?", "What is the best book you read this year?"},
	{"How many siblings do you have?", "How many cousins do you have?"},
	{"What would you bring to a desert island?", "What would you save from a house fire?"},
	{"What time do you usually wake up?", "What time do you usually go to bed?"},
	{"What is your dream vacation destination?", "Where would you live if money did not matter?"},
	{"How many cups of coffee do you drink per day?", "How many glasses of water do you drink per day?"},
	{"What was your favorite subject in school?", "What subject did you struggle with in school?"},
	{"What is your go-to karaoke song?", "What song can you not stand anymore?"},
	{"How long was your longest road trip?", "How long was your longest flight?"},
}
