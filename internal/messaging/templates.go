package messaging

import "hoteldesk/internal/loyalty"

// Built-in template texts per category. The messaging workflow falls back to
// these when no active row exists in message_templates for the category, so a
// fresh database can still send every kind of message.
var builtinTemplates = map[loyalty.Category][]string{
	loyalty.CategoryThanks: {
		"Merci pour votre séjour chez nous. Nous espérons vous revoir très bientôt.",
		"Merci pour votre séjour chez nous. Votre présence compte énormément pour nous.",
		"Merci pour votre séjour chez nous. Nous vous remercions du fond du cœur.",
		"Merci pour votre séjour chez nous. Vous êtes toujours le bienvenu.",
		"Merci pour votre séjour chez nous. Votre confiance nous touche profondément.",
		"Merci pour votre séjour chez nous. Nous espérons que vous avez apprécié votre expérience.",
		"Merci pour votre séjour chez nous. Vous faites partie de nos clients précieux.",
		"Merci pour votre séjour chez nous. Toute l'équipe vous remercie chaleureusement.",
		"Merci pour votre séjour chez nous. Votre satisfaction est notre priorité.",
		"Merci pour votre séjour chez nous. Nous serons ravis de vous accueillir à nouveau.",
	},
	loyalty.CategoryReminder: {
		"Cela fait un moment que nous ne vous avons pas vu. Nous espérons vous revoir très bientôt.",
		"Cela fait un moment que nous ne vous avons pas vu. Votre présence compte énormément pour nous.",
		"Cela fait un moment que nous ne vous avons pas vu. Vous êtes toujours le bienvenu.",
		"Cela fait un moment que nous ne vous avons pas vu. Revenez vivre un nouveau moment agréable.",
		"Cela fait un moment que nous ne vous avons pas vu. Nous serons ravis de vous accueillir à nouveau.",
	},
	loyalty.CategoryVIP: {
		"Merci pour votre grande fidélité. Nous espérons vous revoir très bientôt.",
		"Merci pour votre grande fidélité. Vous faites partie de nos clients précieux.",
		"Merci pour votre grande fidélité. Votre confiance nous touche profondément.",
		"Merci pour votre grande fidélité. Nous sommes honorés de vous avoir accueilli.",
		"Merci pour votre grande fidélité. Vous êtes un client exceptionnel.",
	},
	loyalty.CategoryWelcome: {
		"Bienvenue à l'Hôtel Touriste ! Nous sommes ravis de vous accueillir.",
		"Bienvenue chez nous ! Toute l'équipe est heureuse de vous recevoir.",
		"Bienvenue à l'Hôtel Touriste ! Nous espérons que votre séjour sera inoubliable.",
		"Bienvenue ! Notre équipe est à votre entière disposition.",
		"Bienvenue à l'Hôtel Touriste ! Votre satisfaction est notre mission.",
	},
	loyalty.CategoryReturning: {
		"Quel plaisir de vous revoir ! Nous sommes très heureux de votre retour.",
		"Content de vous revoir parmi nous ! Votre fidélité nous touche.",
		"Vous êtes de retour ! Nous sommes honorés de votre confiance renouvelée.",
		"Ravi de vous accueillir à nouveau ! Vous faites partie de notre famille.",
		"Bienvenue de nouveau ! Chaque visite est un honneur pour nous.",
	},
	loyalty.CategoryInvitation: {
		"Vous nous manquez ! Profitez d'une offre spéciale lors de votre prochaine réservation.",
		"L'Hôtel Touriste vous attend ! Revenez découvrir nos nouveautés.",
		"Nous serions ravis de vous revoir ! Des surprises vous attendent.",
		"Votre chambre vous attend ! Réservez maintenant pour un tarif préférentiel.",
	},
	loyalty.CategoryBirthday: {
		"Joyeux anniversaire ! L'Hôtel Touriste vous souhaite une merveilleuse journée.",
		"Bon anniversaire ! Que cette nouvelle année soit remplie de bonheur.",
		"Joyeux anniversaire de la part de toute l'équipe de l'Hôtel Touriste !",
	},
}
