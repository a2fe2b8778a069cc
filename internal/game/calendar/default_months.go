package calendar

// DefaultMonths returns the twelve Hadean months the campaign ships
// with. Used to seed an empty calendar table; the reference day counts
// and season tags must not drift.
func DefaultMonths() []Month {
	return []Month{
		{Number: 1, Name: "Nikarion", Season: SeasonWinter, Days: 31},
		{Number: 2, Name: "Katharion", Season: SeasonWinter, Days: 28},
		{Number: 3, Name: "Photarion", Season: SeasonSpring, Days: 31},
		{Number: 4, Name: "Thalassion", Season: SeasonSpring, Days: 30},
		{Number: 5, Name: "Antheion", Season: SeasonSpring, Days: 31},
		{Number: 6, Name: "Melission", Season: SeasonSummer, Days: 30},
		{Number: 7, Name: "Heliarion", Season: SeasonSummer, Days: 31},
		{Number: 8, Name: "Panagion", Season: SeasonSummer, Days: 31},
		{Number: 9, Name: "Ouranion", Season: SeasonFall, Days: 30},
		{Number: 10, Name: "Hieratarion", Season: SeasonFall, Days: 31},
		{Number: 11, Name: "Koimarion", Season: SeasonFall, Days: 30},
		{Number: 12, Name: "Hesperion", Season: SeasonWinter, Days: 31},
	}
}

// Default returns a Calendar built from DefaultMonths and DefaultEra.
func Default() *Calendar {
	return New(DefaultMonths(), DefaultEra)
}
