package locale

import "time"

// Weekday tables are indexed by time.Weekday (Sunday first).
var weekdayAbbrev = map[Language][7]string{
	English:  {"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"},
	Romanian: {"dum.", "lun.", "mar.", "mie.", "joi", "vin.", "sâm."},
	Russian:  {"вс", "пн", "вт", "ср", "чт", "пт", "сб"},
}

// Month tables are indexed by time.Month - 1.
var monthAbbrev = map[Language][12]string{
	English:  {"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"},
	Romanian: {"ian.", "feb.", "mar.", "apr.", "mai", "iun.", "iul.", "aug.", "sept.", "oct.", "nov.", "dec."},
	// Russian abbreviations are the genitive forms used after a day number.
	Russian: {"янв.", "февр.", "мар.", "апр.", "мая", "июн.", "июл.", "авг.", "сент.", "окт.", "нояб.", "дек."},
}

// Standalone month names, used for "month year" headings.
var monthName = map[Language][12]string{
	English:  {"January", "February", "March", "April", "May", "June", "July", "August", "September", "October", "November", "December"},
	Romanian: {"ianuarie", "februarie", "martie", "aprilie", "mai", "iunie", "iulie", "august", "septembrie", "octombrie", "noiembrie", "decembrie"},
	Russian:  {"январь", "февраль", "март", "апрель", "май", "июнь", "июль", "август", "сентябрь", "октябрь", "ноябрь", "декабрь"},
}

// WeekdayAbbrev returns the abbreviated weekday name.
func (l Language) WeekdayAbbrev(day time.Weekday) string {
	names, ok := weekdayAbbrev[l]
	if !ok {
		names = weekdayAbbrev[English]
	}
	return names[int(day)%7]
}

// MonthAbbrev returns the abbreviated month name as used in "d MMM".
func (l Language) MonthAbbrev(month time.Month) string {
	names, ok := monthAbbrev[l]
	if !ok {
		names = monthAbbrev[English]
	}
	return names[(int(month)+11)%12]
}

// MonthName returns the standalone full month name.
func (l Language) MonthName(month time.Month) string {
	names, ok := monthName[l]
	if !ok {
		names = monthName[English]
	}
	return names[(int(month)+11)%12]
}
