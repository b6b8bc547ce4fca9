package api

// sampleLines are rows copied from a real statement, column padding
// included. Only rows within the parser's length limit are accepted, so
// the wider ones are reported as skipped.
var sampleLines = []string{
	"1 avr. 2025                                Cigusto Orleans                                                                                               €5.90                                                                                             €30.61",
	"1 avr. 2025                                Carrefour                                                                                                     €2.54                                                                                             €28.07",
	"3 avr. 2025                                Payment from Adwork's                                                                                                                         €590.00                                 €593.94",
	"4 avr. 2025                                Tabac Presse Le Score                                                           €26.00                                                                €574.44",
}
