package model

// Instrument is the single primary instrument of a musician.
type Instrument string

const (
	Guitar    Instrument = "Guitar"
	Bass      Instrument = "Bass"
	Drums     Instrument = "Drums"
	Vocals    Instrument = "Vocals"
	Keyboard  Instrument = "Keyboard"
	Violin    Instrument = "Violin"
	Saxophone Instrument = "Saxophone"
	Trumpet   Instrument = "Trumpet"
	Cello     Instrument = "Cello"
)

// Instruments lists every known instrument in display order.
var Instruments = []Instrument{Guitar, Bass, Drums, Vocals, Keyboard, Violin, Saxophone, Trumpet, Cello}

// Genre is a musical genre tag.
type Genre string

const (
	Rock       Genre = "Rock"
	Jazz       Genre = "Jazz"
	Pop        Genre = "Pop"
	Metal      Genre = "Metal"
	Funk       Genre = "Funk"
	Classical  Genre = "Classical"
	Electronic Genre = "Electronic"
	Blues      Genre = "Blues"
	HipHop     Genre = "Hip Hop"
	Techno     Genre = "Techno"
	LatinRock  Genre = "Latin Rock"
)

// Genres lists every known genre in display order.
var Genres = []Genre{Rock, Jazz, Pop, Metal, Funk, Classical, Electronic, Blues, HipHop, Techno, LatinRock}

type ExperienceLevel string

const (
	Hobbyist     ExperienceLevel = "Hobbyist"
	Intermediate ExperienceLevel = "Intermediate"
	Advanced     ExperienceLevel = "Advanced"
	Professional ExperienceLevel = "Professional"
)

type PortfolioItemType string

const (
	Image PortfolioItemType = "Image"
	Video PortfolioItemType = "Video"
	Audio PortfolioItemType = "Audio"
)

// NotificationType classifies a notification.
type NotificationType string

const (
	UpcomingEvent        NotificationType = "Upcoming Event"
	GigOpportunity       NotificationType = "Gig Opportunity"
	CollaborationRequest NotificationType = "Collaboration Request"
	NewFollower          NotificationType = "New Follower"
)

// GigStatus is the lifecycle state of a gig listing.
type GigStatus string

const (
	GigOpen       GigStatus = "Open"
	GigInProgress GigStatus = "In Progress"
	GigClosed     GigStatus = "Closed"
)

// ParseInstrument matches s against the known instruments, ignoring case.
func ParseInstrument(s string) (Instrument, bool) {
	for _, i := range Instruments {
		if equalFold(string(i), s) {
			return i, true
		}
	}
	return "", false
}

// ParseGenre matches s against the known genres, ignoring case.
func ParseGenre(s string) (Genre, bool) {
	for _, g := range Genres {
		if equalFold(string(g), s) {
			return g, true
		}
	}
	return "", false
}
