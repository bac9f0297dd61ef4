// Package geo holds the delivery-zone lookup tables for checkout forms.
package geo

var NigerianStates = []string{
	"Abia", "Adamawa", "Akwa Ibom", "Anambra", "Bauchi", "Bayelsa", "Benue", "Borno",
	"Cross River", "Delta", "Ebonyi", "Edo", "Ekiti", "Enugu", "FCT", "Gombe",
	"Imo", "Jigawa", "Kaduna", "Kano", "Katsina", "Kebbi", "Kogi", "Kwara",
	"Lagos", "Nasarawa", "Niger", "Ogun", "Ondo", "Osun", "Oyo", "Plateau",
	"Rivers", "Sokoto", "Taraba", "Yobe", "Zamfara",
}

var lagosLGAs = []string{
	"Agege", "Ajeromi-Ifelodun", "Alimosho", "Amuwo-Odofin", "Apapa", "Badagry",
	"Epe", "Eti-Osa", "Ibeju-Lekki", "Ifako-Ijaiye", "Ikeja", "Ikorodu",
	"Kosofe", "Lagos Island", "Lagos Mainland", "Mushin", "Ojo", "Oshodi-Isolo",
	"Shomolu", "Surulere",
}

var abujaLGAs = []string{
	"Abaji", "Bwari", "Gwagwalada", "Kuje", "Kwali", "Municipal Area Council",
}

// LGAs returns the local government areas for states we deliver within.
// Other states get an empty list, matching the checkout form's behavior.
func LGAs(state string) []string {
	switch state {
	case "Lagos":
		return lagosLGAs
	case "FCT":
		return abujaLGAs
	default:
		return []string{}
	}
}
