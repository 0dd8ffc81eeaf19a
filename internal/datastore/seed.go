package datastore

import (
	"github.com/ariefcatur/pandagamers-storefront/internal/api"
	"github.com/ariefcatur/pandagamers-storefront/internal/session"
)

func defaultAdmin() api.User {
	return api.User{ID: "0", Name: "Benja", Username: "benja", Email: "ben@gmail.com", Password: "ben123", Role: session.RoleAdmin}
}

var defaultCatalog = []api.Product{
	{ID: "1", Name: "Auriculares HyperX", Description: "Auriculares gaming de alta calidad con sonido inmersivo.", Price: 79990, Category: "Accesorios", Image: "/images/Accesorios/Auriculares HyperX.webp", Stock: 15},
	{ID: "2", Name: "Control Inalámbrico", Description: "Control inalámbrico para consolas, cómodo y preciso.", Price: 59990, Category: "Accesorios", Image: "/images/Accesorios/Control inalámbrico.jpg", Stock: 20},
	{ID: "3", Name: "Mousepad RGB", Description: "Mousepad con iluminación RGB para setups gaming.", Price: 29990, Category: "Accesorios", Image: "/images/Accesorios/Mousepad RGB.webp", Stock: 25},
	{ID: "4", Name: "Teclado Razer", Description: "Teclado mecánico RGB con switches ópticos.", Price: 149990, Category: "Accesorios", Image: "/images/Accesorios/Teclado Razer.webp", Stock: 10},
	{ID: "5", Name: "Nintendo Switch", Description: "Consola híbrida para gaming en casa o movilidad.", Price: 349990, Category: "Consolas", Image: "/images/Consolas/Nintendo Switch.png", Stock: 8},
	{ID: "6", Name: "PlayStation 4 Pro", Description: "Consola de última generación con 4K HDR.", Price: 399990, Category: "Consolas", Image: "/images/Consolas/PlayStation 4 Pro.avif", Stock: 5},
	{ID: "7", Name: "PlayStation 5", Description: "La consola más potente con ray tracing y SSD ultra rápido.", Price: 599990, Category: "Consolas", Image: "/images/Consolas/PlayStation 5.webp", Stock: 3},
	{ID: "8", Name: "Xbox Series X", Description: "Consola Xbox de nueva generación con 4K gaming.", Price: 549990, Category: "Consolas", Image: "/images/Consolas/Xbox Series X.jpg", Stock: 4},
	{ID: "9", Name: "Carcassonne", Description: "Juego de estrategia medieval para construir ciudades.", Price: 49990, Category: "Juegos de mesa", Image: "/images/Juegos de mesa/Carcassonne.jpg", Stock: 12},
	{ID: "10", Name: "Catan", Description: "Juego de colonización y comercio en una isla.", Price: 59990, Category: "Juegos de mesa", Image: "/images/Juegos de mesa/Catán.webp", Stock: 10},
	{ID: "11", Name: "Monopoly", Description: "Clásico juego de propiedades y negocios.", Price: 39990, Category: "Juegos de mesa", Image: "/images/Juegos de mesa/Monopoly.jpg", Stock: 15},
	{ID: "12", Name: "Risk", Description: "Juego de estrategia global de conquista territorial.", Price: 54990, Category: "Juegos de mesa", Image: "/images/Juegos de mesa/Risk.jpg", Stock: 8},
	{ID: "13", Name: "HyperX Pulsefire", Description: "Mouse gaming ergonómico con sensor óptico preciso.", Price: 69990, Category: "Mouses", Image: "/images/Mouses/HyperX Pulsefire.webp", Stock: 18},
	{ID: "14", Name: "Logitech G502", Description: "Mouse gaming con 11 botones programables.", Price: 89990, Category: "Mouses", Image: "/images/Mouses/Logitech G502.webp", Stock: 14},
	{ID: "15", Name: "Razer DeathAdder", Description: "Mouse ergonómico con sensor óptico de 16,000 DPI.", Price: 79990, Category: "Mouses", Image: "/images/Mouses/Razer DeathAdder.webp", Stock: 16},
	{ID: "16", Name: "SteelSeries Rival 3", Description: "Mouse gaming ligero con iluminación RGB.", Price: 64990, Category: "Mouses", Image: "/images/Mouses/SteelSeries Rival 3 –.webp", Stock: 20},
	{ID: "17", Name: "PC Alienware", Description: "PC gaming de alto rendimiento con RTX 3080.", Price: 1999990, Category: "Pc Gamers", Image: "/images/Pc Gamers/PC Alienware.webp", Stock: 2},
	{ID: "18", Name: "PC ASUS ROG Strix", Description: "PC gaming con componentes premium y RGB.", Price: 1799990, Category: "Pc Gamers", Image: "/images/Pc Gamers/PC ASUS ROG Strix.png", Stock: 3},
	{ID: "19", Name: "PC HP Omen", Description: "PC gaming equilibrado para gaming competitivo.", Price: 1499990, Category: "Pc Gamers", Image: "/images/Pc Gamers/PC HP Omen.jpg", Stock: 4},
	{ID: "20", Name: "PC MSI Gaming", Description: "PC gaming con enfriamiento avanzado.", Price: 1699990, Category: "Pc Gamers", Image: "/images/Pc Gamers/PC MSI Gaming.jpg", Stock: 3},
	{ID: "21", Name: "Polera Gamer 1", Description: "Polera cómoda para gamers con diseño único.", Price: 29990, Category: "Poleras", Image: "/images/Poleras/640 (1).webp", Stock: 30},
	{ID: "22", Name: "Polera Gamer 2", Description: "Polera con estampado de juegos.", Price: 34990, Category: "Poleras", Image: "/images/Poleras/3396_1.png", Stock: 25},
	{ID: "23", Name: "Polera God of War", Description: "Polera inspirada en God of War.", Price: 39990, Category: "Poleras", Image: "/images/Poleras/PLR-GOW.jpg", Stock: 20},
	{ID: "24", Name: "Polera Papa Gamer", Description: "Polera divertida para papás gamers.", Price: 32990, Category: "Poleras", Image: "/images/Poleras/polera-papa-de-dia-gamer-de-noche.jpg", Stock: 22},
	{ID: "25", Name: "Polerón Gamer 1", Description: "Polerón abrigado para sesiones largas de gaming.", Price: 59990, Category: "Polerones", Image: "/images/Polerones/1132_9.png", Stock: 15},
	{ID: "26", Name: "Polerón Gamer 2", Description: "Polerón con capucha y diseño moderno.", Price: 64990, Category: "Polerones", Image: "/images/Polerones/9704_9.png", Stock: 12},
	{ID: "27", Name: "Polerón Smash Bros Vintage", Description: "Polerón inspirado en Super Smash Bros con colores vintage.", Price: 69990, Category: "Polerones", Image: "/images/Polerones/poleron-smash-bros-vintage-colors.jpg", Stock: 10},
	{ID: "28", Name: "Polerón Smash Ultimate", Description: "Polerón de Super Smash Bros Ultimate.", Price: 74990, Category: "Polerones", Image: "/images/Polerones/poleron-smash-ultimate-2.jpg", Stock: 8},
	{ID: "29", Name: "HyperX Fury S", Description: "Portamouse gaming con diseño ergonómico.", Price: 39990, Category: "Portamouse", Image: "/images/Portamouse/HyperX Fury S.avif", Stock: 18},
	{ID: "30", Name: "Logitech G640", Description: "Portamouse de tela para precisión máxima.", Price: 49990, Category: "Portamouse", Image: "/images/Portamouse/Logitech G640.jpg", Stock: 16},
	{ID: "31", Name: "Razer Goliathus", Description: "Portamouse con superficie de control óptima.", Price: 44990, Category: "Portamouse", Image: "/images/Portamouse/Razer Goliathus.png", Stock: 20},
	{ID: "32", Name: "SteelSeries QcK", Description: "Portamouse profesional para esports.", Price: 52990, Category: "Portamouse", Image: "/images/Portamouse/SteelSeries QcK.jpg", Stock: 14},
	{ID: "33", Name: "Silla Cougar", Description: "Silla gaming ergonómica con soporte lumbar.", Price: 299990, Category: "Sillas", Image: "/images/Sillas/Silla Cougar.webp", Stock: 5},
	{ID: "34", Name: "Silla DXRacer", Description: "Silla premium para gaming con ajuste completo.", Price: 399990, Category: "Sillas", Image: "/images/Sillas/Silla DXRacer.jpg", Stock: 4},
	{ID: "35", Name: "Silla GT Omega", Description: "Silla gaming cómoda con diseño moderno.", Price: 349990, Category: "Sillas", Image: "/images/Sillas/Silla GT Omega.jpg", Stock: 6},
	{ID: "36", Name: "Silla SecretLab", Description: "Silla de alta gama con materiales premium.", Price: 499990, Category: "Sillas", Image: "/images/Sillas/Silla SecretLab.webp", Stock: 3},
}
