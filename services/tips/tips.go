// Package tips fournit les conseils de sobriété affichés sur le tableau de bord.
package tips

import "math/rand/v2"

var all = []string{
	"Switch to LED lighting to reduce electricity consumption.",
	"Encourage telecommuting to cut down on transportation emissions.",
	"Implement a comprehensive recycling program in your office.",
	"Power down computers and equipment at the end of the day.",
	"Optimize delivery routes to save fuel and reduce emissions.",
	"Conduct an energy audit to identify areas for improvement.",
	"Choose suppliers with strong sustainability practices.",
	"Install smart thermostats to regulate heating and cooling.",
	"Reduce paper usage by going digital with documents and invoices.",
	"Offset your carbon emissions through certified programs.",
}

// All retourne une copie de la liste des conseils.
func All() []string {
	return append([]string(nil), all...)
}

// Random retourne un conseil tiré uniformément.
func Random() string {
	return all[rand.IntN(len(all))]
}
