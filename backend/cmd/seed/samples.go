package main

import "recipe-graph/backend/internal/graph"

type sampleRecipe struct {
	id          string
	input       graph.RecipeInput
	ingredients []string
}

func intPtr(v int) *int { return &v }

var sampleRecipes = []sampleRecipe{
	{
		id: "seed-pancakes",
		input: graph.RecipeInput{
			Name:         "Buttermilk Pancakes",
			Instructions: "Whisk the dry ingredients. Beat in buttermilk, egg and melted butter. Cook ladlefuls on a hot griddle until bubbles form, then flip.",
			Calories:     intPtr(350),
			TimeMinutes:  intPtr(25),
			Difficulty:   "easy",
			Cuisine:      "american",
			Diets:        []string{"vegetarian"},
		},
		ingredients: []string{"Flour", "Sugar", "Baking Powder", "Salt", "Buttermilk", "Egg", "Butter"},
	},
	{
		id: "seed-tomato-soup",
		input: graph.RecipeInput{
			Name:         "Roasted Tomato Soup",
			Instructions: "Roast tomatoes, onion and garlic with olive oil. Blend with stock and simmer for ten minutes. Season and finish with basil.",
			Calories:     intPtr(180),
			TimeMinutes:  intPtr(50),
			Difficulty:   "easy",
			Cuisine:      "italian",
			Diets:        []string{"vegan", "vegetarian", "gluten free"},
		},
		ingredients: []string{"Tomato", "Onion", "Garlic", "Olive Oil", "Vegetable Stock", "Basil", "Salt"},
	},
	{
		id: "seed-chicken-curry",
		input: graph.RecipeInput{
			Name:         "Chicken Tikka Masala",
			Instructions: "Marinate chicken in yogurt and spices, then grill. Simmer onion, garlic, ginger and tomato with garam masala and cream. Add the chicken and cook through.",
			Calories:     intPtr(620),
			TimeMinutes:  intPtr(75),
			Difficulty:   "medium",
			Cuisine:      "indian",
			Diets:        []string{"gluten free"},
		},
		ingredients: []string{"Chicken Breast", "Yogurt", "Garam Masala", "Onion", "Garlic", "Ginger", "Tomato", "Cream"},
	},
	{
		id: "seed-pad-thai",
		input: graph.RecipeInput{
			Name:         "Shrimp Pad Thai",
			Instructions: "Soak rice noodles. Stir-fry shrimp and garlic, push aside and scramble egg. Add noodles, tamarind, fish sauce and sugar. Toss with bean sprouts and peanuts.",
			Calories:     intPtr(540),
			TimeMinutes:  intPtr(35),
			Difficulty:   "medium",
			Cuisine:      "thai",
			Diets:        []string{"dairy free"},
		},
		ingredients: []string{"Rice Noodles", "Shrimp", "Garlic", "Egg", "Tamarind Paste", "Fish Sauce", "Sugar", "Bean Sprouts", "Peanuts"},
	},
	{
		id: "seed-beef-wellington",
		input: graph.RecipeInput{
			Name:         "Beef Wellington",
			Instructions: "Sear the beef fillet. Wrap in mushroom duxelles and prosciutto, then in puff pastry. Chill, egg wash and bake until the pastry is golden.",
			Calories:     intPtr(810),
			TimeMinutes:  intPtr(150),
			Difficulty:   "hard",
			Cuisine:      "british",
		},
		ingredients: []string{"Beef Fillet", "Mushroom", "Prosciutto", "Puff Pastry", "Egg", "Mustard", "Thyme"},
	},
	{
		id: "seed-greek-salad",
		input: graph.RecipeInput{
			Name:         "Greek Salad",
			Instructions: "Chop tomato, cucumber and red onion. Add olives and feta, dress with olive oil and oregano.",
			Calories:     intPtr(240),
			TimeMinutes:  intPtr(15),
			Difficulty:   "easy",
			Cuisine:      "greek",
			Diets:        []string{"vegetarian", "gluten free"},
		},
		ingredients: []string{"Tomato", "Cucumber", "Red Onion", "Kalamata Olives", "Feta", "Olive Oil", "Oregano"},
	},
}
