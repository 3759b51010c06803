package intent

// Intent is one named category of client request together with its trigger
// examples and reply templates. Templates may carry {{nom}} and {{fidelite}}
// placeholders filled at reply time.
type Intent struct {
	Name         string
	Examples     []string
	Responses    []string
	RequiresAuth bool
}

// Fallback is the sentinel intent returned when nothing matches. Resolution
// never yields an empty intent name.
const Fallback = "fallback"

// Table is scanned top to bottom during resolution, so the slice order is
// part of the classification contract. Do not reorder entries.
var Table = []Intent{
	{
		Name:     "greeting",
		Examples: []string{"Bonjour", "Salut", "Bonsoir", "Coucou", "Salut l'équipe"},
		Responses: []string{
			"Bonjour {{nom}} ! 👋 Je suis l'assistant virtuel de l'Hôtel Touriste. Comment puis-je vous aider aujourd'hui ?",
			"Salut {{nom}} ! Heureux de vous lire. Comment puis-je vous assister ?",
			"Bonsoir {{nom}} ! Bienvenue à l'Hôtel Touriste. Dites-moi ce dont vous avez besoin.",
		},
	},
	{
		Name:     "help_menu",
		Examples: []string{"Que peux-tu faire ?", "Aide", "Menu", "Options"},
		Responses: []string{
			"Je peux vous aider à : vérifier une réservation, réserver une chambre, répondre à vos questions sur nos services, et plus encore. Que souhaitez-vous faire ?",
			"Voici mes capacités : vérifier disponibilité, réserver, modifier une réservation, envoyer une facture, contacter la réception. Dites simplement ce que vous voulez.",
		},
	},
	{
		Name:     "check_availability",
		Examples: []string{"Y a-t-il des chambres ?", "Disponibilité", "Chambres libres"},
		Responses: []string{
			"Je peux vérifier la disponibilité pour vous. Quelles sont vos dates d'arrivée et de départ souhaitées ?",
			"Dites-moi vos dates et je regarde immédiatement quelles chambres sont disponibles.",
		},
		RequiresAuth: true,
	},
	{
		Name:     "make_reservation",
		Examples: []string{"Je veux réserver", "Réservez pour moi", "Faire une réservation"},
		Responses: []string{
			"Très bien {{nom}} ! Pour finaliser la réservation, pouvez-vous me confirmer : dates, type de chambre et nombre de personnes ?",
			"Super ! Donnez-moi les dates et le type de chambre (Standard, Confort, Suite) et je m'occupe du reste.",
		},
		RequiresAuth: true,
	},
	{
		Name:     "room_types",
		Examples: []string{"Quels types de chambres ?", "Types de chambre disponibles"},
		Responses: []string{
			"Nous proposons : Chambre Standard, Chambre Confort et Suite. La Suite inclut un salon privé et un cadeau de bienvenue.",
			"Types disponibles : Standard (économique), Confort (plus d'espace) et Suite (luxe). Voulez-vous voir les tarifs ?",
		},
	},
	{
		Name:     "check_in_time",
		Examples: []string{"Heure d'arrivée", "Check-in", "À quelle heure puis-je arriver ?"},
		Responses: []string{
			"L'enregistrement (check-in) commence à 14:00. Si vous souhaitez arriver plus tôt, dites-le moi et je vérifierai la possibilité d'un early check-in.",
			"Nos horaires standards : check-in à partir de 14h. Besoin d'un early check-in ?",
		},
	},
	{
		Name:     "check_out_time",
		Examples: []string{"Heure de départ", "Check-out", "À quelle heure quitter ?"},
		Responses: []string{
			"L'heure de départ standard est à 12:00. Si vous avez besoin d'un late check-out, indiquez l'heure souhaitée.",
			"Le check-out se fait à 12h. Pour un départ tardif, je peux vérifier la disponibilité.",
		},
	},
	{
		Name:     "amenities",
		Examples: []string{"Piscine ?", "Wifi gratuit ?", "Petit déjeuner inclus ?", "Services"},
		Responses: []string{
			"Oui, nous avons piscine, wifi gratuit haut débit, petit-déjeuner buffet, salle de sport et service de chambre.",
			"Nos services : wifi gratuit, parking sécurisé, petit-déjeuner, spa, navette sur demande.",
		},
	},
	{
		Name:     "wifi_info",
		Examples: []string{"Mot de passe wifi", "Connexion internet", "Wifi"},
		Responses: []string{
			"Le wifi est gratuit. À l'arrivée vous recevrez le code d'accès en réception.",
			"Le réseau est 'Hotel_Touriste_Guest'. Indiquez votre numéro de chambre pour obtenir le mot de passe.",
		},
		RequiresAuth: true,
	},
	{
		Name:     "parking_info",
		Examples: []string{"Parking", "Garer ma voiture", "Sécurité parking"},
		Responses: []string{
			"Nous disposons d'un parking sécurisé gratuit. Voulez-vous une place réservée ?",
			"Parking disponible sur place. Dites-moi si vous souhaitez une place réservée.",
		},
	},
	{
		Name:     "directions",
		Examples: []string{"Comment venir ?", "Adresse de l'hôtel", "Itinéraire"},
		Responses: []string{
			"L'hôtel est situé Place Mulamba, Bukavu. Voulez-vous l'itinéraire Google Maps ou une navette ?",
			"Je peux envoyer l'itinéraire. D'où partez-vous ?",
		},
	},
	{
		Name:     "room_service",
		Examples: []string{"Commander à manger", "Room service", "Dîner en chambre"},
		Responses: []string{
			"Bien sûr {{nom}}. Que souhaitez-vous commander ? Je transmets au service chambre.",
			"Dites-moi votre commande et je m'en occupe immédiatement.",
		},
		RequiresAuth: true,
	},
	{
		Name:     "complaint",
		Examples: []string{"Je veux me plaindre", "Problème", "Le bruit est trop fort"},
		Responses: []string{
			"Je suis vraiment désolé d'apprendre cela. Pouvez-vous me donner les détails ? Nous allons résoudre cela immédiatement.",
			"Merci de nous alerter. Donnez-moi les informations et j'envoie une notification urgente à la réception.",
		},
		RequiresAuth: true,
	},
	{
		Name:     "loyalty_status",
		Examples: []string{"Mon score fidélité", "Combien de pourcent ?", "Suis-je VIP ?"},
		Responses: []string{
			"Vous avez {{fidelite}}% de fidélité. À 100% vous deviendrez VIP avec des avantages exclusifs !",
			"Votre progression : {{fidelite}}%. Continuez à nous rendre visite pour le statut VIP !",
		},
		RequiresAuth: true,
	},
	{
		Name:     "thanks",
		Examples: []string{"Merci", "Merci beaucoup", "Merci pour ton aide"},
		Responses: []string{
			"Avec plaisir {{nom}} ! Si vous avez encore besoin d'aide, je suis là pour vous.",
			"Merci à vous ! Passez une excellente journée et à bientôt à l'Hôtel Touriste.",
		},
	},
	{
		Name:     "goodbye",
		Examples: []string{"Au revoir", "À bientôt", "Ciao", "Bye"},
		Responses: []string{
			"Au revoir {{nom}} ! Prenez soin de vous et n'hésitez pas à revenir. Nous serons ravis de vous accueillir.",
			"À bientôt ! Merci d'avoir contacté l'Hôtel Touriste.",
		},
	},
	{
		Name:     "contact_reception",
		Examples: []string{"Numéro de la réception", "Contacter la réception", "Parler à un humain"},
		Responses: []string{
			"Je peux vous donner le numéro : +243 976 938 182. Voulez-vous que je transfère votre demande ?",
			"Souhaitez-vous que je contacte la réception pour vous ?",
		},
		RequiresAuth: true,
	},
	{
		Name: Fallback,
		Responses: []string{
			"Désolé, je n'ai pas bien compris. Pouvez-vous reformuler ou choisir : réservation, disponibilité, services, contact ?",
			"Je ne suis pas sûr d'avoir saisi. Voulez-vous vérifier une réservation ou connaître nos services ?",
		},
	},
}

// keywordRule routes text that matched no example phrase. Rules fire on a
// plain substring test, first match wins, and the order below is load-bearing:
// "réserv" is checked before "chambre", so "réserver une chambre" classifies
// as a reservation, not a room-type question.
type keywordRule struct {
	intent   string
	keywords []string
}

var keywordRules = []keywordRule{
	{"greeting", []string{"bonjour", "salut", "bonsoir"}},
	{"make_reservation", []string{"réserv"}},
	{"check_availability", []string{"disponib", "chambre libre"}},
	{"wifi_info", []string{"wifi", "internet"}},
	{"parking_info", []string{"parking", "voiture"}},
	{"check_in_time", []string{"check-in", "arrivée"}},
	{"check_out_time", []string{"check-out", "départ"}},
	{"thanks", []string{"merci"}},
	{"goodbye", []string{"au revoir", "bye"}},
	{"complaint", []string{"plainte", "problème"}},
	{"loyalty_status", []string{"fidélité", "vip", "score"}},
	{"contact_reception", []string{"réception", "humain", "appeler"}},
	{"amenities", []string{"service", "piscine", "restaurant"}},
	{"room_types", []string{"chambre", "type", "suite"}},
	{"directions", []string{"adresse", "venir", "itinéraire"}},
	{"help_menu", []string{"aide", "menu", "option"}},
}
