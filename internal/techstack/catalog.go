package techstack

import "github.com/standardbeagle/codeprofile/internal/types"

// tech is a canonical technology name with the group it is reported in.
type tech struct {
	Name string
	Kind types.TechKind
}

func framework(name string) tech { return tech{name, types.TechFramework} }
func library(name string) tech   { return tech{name, types.TechLibrary} }
func buildTool(name string) tech { return tech{name, types.TechBuildTool} }
func testTool(name string) tech  { return tech{name, types.TechTesting} }

// ecosystem maps declared dependency names of one package manager to
// technologies. With a non-empty Separator a key also matches any name that
// continues with Separator (github.com/labstack/echo matches .../echo/v4).
type ecosystem struct {
	Name      string
	Separator string
	Table     map[string]tech
}

func (e *ecosystem) lookup(dep string) []tech {
	if t, ok := e.Table[dep]; ok {
		return []tech{t}
	}
	if e.Separator == "" {
		return nil
	}
	var out []tech
	for key, t := range e.Table {
		if len(dep) > len(key) && dep[:len(key)] == key && dep[len(key):len(key)+len(e.Separator)] == e.Separator {
			out = append(out, t)
		}
	}
	return out
}

var npmEcosystem = &ecosystem{
	Name:  "npm",
	Table: map[string]tech{
		// Frameworks
		"react":            framework("React"),
		"next":             framework("Next.js"),
		"vue":              framework("Vue"),
		"nuxt":             framework("Nuxt"),
		"@angular/core":    framework("Angular"),
		"svelte":           framework("Svelte"),
		"@sveltejs/kit":    framework("SvelteKit"),
		"solid-js":         framework("SolidJS"),
		"preact":           framework("Preact"),
		"astro":            framework("Astro"),
		"gatsby":           framework("Gatsby"),
		"@remix-run/react": framework("Remix"),
		"express":          framework("Express"),
		"fastify":          framework("Fastify"),
		"koa":              framework("Koa"),
		"@nestjs/core":     framework("NestJS"),
		"hono":             framework("Hono"),
		"electron":         framework("Electron"),
		"react-native":     framework("React Native"),
		"expo":             framework("Expo"),

		// Libraries
		"redux":                 library("Redux"),
		"@reduxjs/toolkit":      library("Redux Toolkit"),
		"mobx":                  library("MobX"),
		"zustand":               library("Zustand"),
		"@tanstack/react-query": library("TanStack Query"),
		"axios":                 library("Axios"),
		"lodash":                library("Lodash"),
		"rxjs":                  library("RxJS"),
		"graphql":               library("GraphQL"),
		"@apollo/client":        library("Apollo Client"),
		"@trpc/server":          library("tRPC"),
		"@trpc/client":          library("tRPC"),
		"zod":                   library("Zod"),
		"mongoose":              library("Mongoose"),
		"mongodb":               library("MongoDB"),
		"pg":                    library("node-postgres"),
		"prisma":                library("Prisma"),
		"@prisma/client":        library("Prisma"),
		"drizzle-orm":           library("Drizzle ORM"),
		"typeorm":               library("TypeORM"),
		"sequelize":             library("Sequelize"),
		"tailwindcss":           library("Tailwind CSS"),
		"styled-components":     library("styled-components"),
		"@emotion/react":        library("Emotion"),
		"next-auth":             library("NextAuth.js"),
		"socket.io":             library("Socket.IO"),
		"react-router":          library("React Router"),
		"react-router-dom":      library("React Router"),

		// Build tools
		"vite":        buildTool("Vite"),
		"webpack":     buildTool("Webpack"),
		"rollup":      buildTool("Rollup"),
		"esbuild":     buildTool("esbuild"),
		"parcel":      buildTool("Parcel"),
		"turbo":       buildTool("Turborepo"),
		"nx":          buildTool("Nx"),
		"lerna":       buildTool("Lerna"),
		"typescript":  buildTool("TypeScript"),
		"@babel/core": buildTool("Babel"),
		"eslint":      buildTool("ESLint"),
		"prettier":    buildTool("Prettier"),

		// Testing
		"jest":                   testTool("Jest"),
		"vitest":                 testTool("Vitest"),
		"mocha":                  testTool("Mocha"),
		"chai":                   testTool("Chai"),
		"jasmine":                testTool("Jasmine"),
		"karma":                  testTool("Karma"),
		"ava":                    testTool("AVA"),
		"cypress":                testTool("Cypress"),
		"@playwright/test":       testTool("Playwright"),
		"@testing-library/react": testTool("Testing Library"),
		"@testing-library/vue":   testTool("Testing Library"),
		"supertest":              testTool("SuperTest"),
	},
}

var pythonEcosystem = &ecosystem{
	Name:  "python",
	Table: map[string]tech{
		"django":              framework("Django"),
		"flask":               framework("Flask"),
		"fastapi":             framework("FastAPI"),
		"starlette":           framework("Starlette"),
		"tornado":             framework("Tornado"),
		"pyramid":             framework("Pyramid"),
		"djangorestframework": library("Django REST Framework"),
		"sqlalchemy":          library("SQLAlchemy"),
		"alembic":             library("Alembic"),
		"pydantic":            library("Pydantic"),
		"celery":              library("Celery"),
		"requests":            library("Requests"),
		"httpx":               library("HTTPX"),
		"numpy":               library("NumPy"),
		"pandas":              library("pandas"),
		"scikit-learn":        library("scikit-learn"),
		"tensorflow":          library("TensorFlow"),
		"torch":               library("PyTorch"),
		"poetry-core":         buildTool("Poetry"),
		"poetry":              buildTool("Poetry"),
		"setuptools":          buildTool("setuptools"),
		"hatchling":           buildTool("Hatch"),
		"black":               buildTool("Black"),
		"ruff":                buildTool("Ruff"),
		"mypy":                buildTool("mypy"),
		"pytest":              testTool("pytest"),
		"nose":                testTool("nose"),
		"tox":                 testTool("tox"),
		"hypothesis":          testTool("Hypothesis"),
	},
}

var goEcosystem = &ecosystem{
	Name:      "go",
	Separator: "/",
	Table: map[string]tech{
		"github.com/gin-gonic/gin":           framework("Gin"),
		"github.com/labstack/echo":           framework("Echo"),
		"github.com/gofiber/fiber":           framework("Fiber"),
		"github.com/go-chi/chi":              framework("Chi"),
		"github.com/gorilla/mux":             framework("Gorilla Mux"),
		"google.golang.org/grpc":             framework("gRPC"),
		"connectrpc.com/connect":             framework("Connect"),
		"github.com/spf13/cobra":             library("Cobra"),
		"github.com/spf13/viper":             library("Viper"),
		"github.com/urfave/cli":              library("urfave/cli"),
		"gorm.io/gorm":                       library("GORM"),
		"entgo.io/ent":                       library("Ent"),
		"github.com/jackc/pgx":               library("pgx"),
		"go.uber.org/zap":                    library("Zap"),
		"github.com/sirupsen/logrus":         library("Logrus"),
		"github.com/charmbracelet/bubbletea": library("Bubble Tea"),
		"github.com/stretchr/testify":        testTool("Testify"),
		"github.com/onsi/ginkgo":             testTool("Ginkgo"),
		"github.com/onsi/gomega":             testTool("Gomega"),
		"go.uber.org/goleak":                 testTool("goleak"),
	},
}

var cargoEcosystem = &ecosystem{
	Name:  "cargo",
	Table: map[string]tech{
		"actix-web": framework("Actix Web"),
		"axum":      framework("Axum"),
		"rocket":    framework("Rocket"),
		"warp":      framework("Warp"),
		"tauri":     framework("Tauri"),
		"yew":       framework("Yew"),
		"leptos":    framework("Leptos"),
		"tokio":     library("Tokio"),
		"serde":     library("Serde"),
		"diesel":    library("Diesel"),
		"sqlx":      library("SQLx"),
		"clap":      library("Clap"),
		"mockall":   testTool("mockall"),
		"proptest":  testTool("proptest"),
		"rstest":    testTool("rstest"),
		"criterion": testTool("Criterion"),
	},
}

var rubyEcosystem = &ecosystem{
	Name:  "ruby",
	Table: map[string]tech{
		"rails":       framework("Ruby on Rails"),
		"sinatra":     framework("Sinatra"),
		"hanami":      framework("Hanami"),
		"sidekiq":     library("Sidekiq"),
		"devise":      library("Devise"),
		"rake":        buildTool("Rake"),
		"rubocop":     buildTool("RuboCop"),
		"rspec":       testTool("RSpec"),
		"rspec-rails": testTool("RSpec"),
		"minitest":    testTool("Minitest"),
		"capybara":    testTool("Capybara"),
	},
}

var composerEcosystem = &ecosystem{
	Name:  "composer",
	Table: map[string]tech{
		"laravel/framework":        framework("Laravel"),
		"symfony/framework-bundle": framework("Symfony"),
		"slim/slim":                framework("Slim"),
		"doctrine/orm":             library("Doctrine"),
		"guzzlehttp/guzzle":        library("Guzzle"),
		"phpunit/phpunit":          testTool("PHPUnit"),
		"pestphp/pest":             testTool("Pest"),
	},
}

var jvmEcosystem = &ecosystem{
	Name:      "jvm",
	Separator: ":",
	Table: map[string]tech{
		"org.springframework.boot": framework("Spring Boot"),
		"org.springframework":      framework("Spring"),
		"io.quarkus":               framework("Quarkus"),
		"io.micronaut":             framework("Micronaut"),
		"org.hibernate":            library("Hibernate"),
		"org.hibernate.orm":        library("Hibernate"),
		"org.projectlombok":        library("Lombok"),
		"junit":                    testTool("JUnit"),
		"org.junit.jupiter":        testTool("JUnit"),
		"org.mockito":              testTool("Mockito"),
		"org.apache.maven.plugins": buildTool("Maven"),
	},
}

var dartEcosystem = &ecosystem{
	Name:  "dart",
	Table: map[string]tech{
		"flutter":          framework("Flutter"),
		"flutter_riverpod": library("Riverpod"),
		"riverpod":         library("Riverpod"),
		"provider":         library("Provider"),
		"flutter_bloc":     library("BLoC"),
		"bloc":             library("BLoC"),
		"dio":              library("Dio"),
		"build_runner":     buildTool("build_runner"),
		"flutter_test":     testTool("Flutter Test"),
		"test":             testTool("package:test"),
	},
}
