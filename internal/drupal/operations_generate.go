package drupal

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/tyemirov/drutask/internal/orchestrator"
)

const (
	generateDataNameConstant           = "generate-data"
	generateDataDescriptionConstant    = "Generate users, taxonomy terms, content and menus with devel_generate"
	generateUsersNameConstant          = "generate-users"
	generateUsersDescriptionConstant   = "Create one account per role, named after the role"
	develGenerateModuleConstant        = "devel_generate"
	evalArgumentConstant               = "eval"
	vocabularyProbeCodeConstant        = `echo array_keys(\Drupal\taxonomy\Entity\Vocabulary::loadMultiple())[0] ?? '';`
	contentTypesProbeCodeConstant      = `echo implode(',', array_keys(\Drupal\node\Entity\NodeType::loadMultiple()));`
	vocabularyShapeConstant            = "vocabulary probe"
	contentTypesShapeConstant          = "content type probe"
	noVocabularyDetailConstant         = "no vocabulary exists after generating one"
	noContentTypesDetailConstant       = "no content types exist"
	generatedEntityCountConstant       = "50"
	roleListArgumentConstant           = "role:list"
	sqlQueryArgumentConstant           = "sqlq"
	existingUserQueryTemplate          = "select name from users_field_data where name='%s'"
	userCreateArgumentConstant         = "user:create"
	userRoleAddArgumentConstant        = "user:role:add"
	userMailArgumentTemplate           = "--mail=%s@example.com"
	userPasswordArgumentTemplate       = "--password=%s"
	anonymousRoleConstant              = "anonymous"
	authenticatedRoleConstant          = "authenticated"
	noRolesReasonConstant              = "no roles found"
	roleListFailedReasonTemplate       = "unable to list roles: %v"
	userExistsNoticeTemplate           = "User %s already exists."
	unsupportedRoleNoticeTemplate      = "Role %q cannot be used as a user name, skipped."
	generateUsersRequiredMajorConstant = 8
)

var roleIdentifierPattern = regexp.MustCompile(`^[a-z0-9_]+$`)

type generateDataOperation struct {
	commands commandFactory
}

func (operation generateDataOperation) Name() string {
	return generateDataNameConstant
}

func (operation generateDataOperation) Description() string {
	return generateDataDescriptionConstant
}

func (operation generateDataOperation) Options() []orchestrator.OptionDefinition {
	return nil
}

func (operation generateDataOperation) Plan(executionContext context.Context, session *orchestrator.Session, _ orchestrator.Options) (orchestrator.StepList, error) {
	if gateError := session.Prepare(executionContext, operation.commands.drush(pmEnableArgumentConstant, develGenerateModuleConstant, yesFlagConstant)); gateError != nil {
		return orchestrator.StepList{}, gateError
	}

	vocabulary, vocabularyError := operation.firstVocabulary(executionContext, session)
	if vocabularyError != nil {
		return orchestrator.StepList{}, vocabularyError
	}
	if len(vocabulary) == 0 {
		if generateError := session.Prepare(executionContext, operation.commands.drush("devel-generate-vocabs", "1")); generateError != nil {
			return orchestrator.StepList{}, generateError
		}
		vocabulary, vocabularyError = operation.firstVocabulary(executionContext, session)
		if vocabularyError != nil {
			return orchestrator.StepList{}, vocabularyError
		}
		if len(vocabulary) == 0 {
			return orchestrator.StepList{}, &orchestrator.OutputParseError{Shape: vocabularyShapeConstant, Detail: noVocabularyDetailConstant}
		}
	}

	contentTypesOutput, contentTypesError := session.Capture(executionContext, operation.commands.drush(evalArgumentConstant, contentTypesProbeCodeConstant))
	if contentTypesError != nil {
		return orchestrator.StepList{}, contentTypesError
	}
	contentTypes := orchestrator.SplitList(contentTypesOutput)
	if len(contentTypes) == 0 {
		return orchestrator.StepList{}, &orchestrator.OutputParseError{Shape: contentTypesShapeConstant, Detail: noContentTypesDetailConstant}
	}

	return orchestrator.NewStepList(
		orchestrator.CommandStep("generate users", operation.commands.drush("devel-generate-users", generatedEntityCountConstant, "--kill", "--pass=password")),
		orchestrator.CommandStep("generate terms", operation.commands.drush("devel-generate-terms", vocabulary, generatedEntityCountConstant, "--kill")),
		orchestrator.CommandStep("generate content", operation.commands.drush("devel-generate-content", generatedEntityCountConstant, "3", "--kill", "--types="+strings.Join(contentTypes, listSeparatorConstant))),
		orchestrator.CommandStep("generate menus", operation.commands.drush("devel-generate-menus", "2", generatedEntityCountConstant, "--kill")),
	), nil
}

func (operation generateDataOperation) firstVocabulary(executionContext context.Context, session *orchestrator.Session) (string, error) {
	output, captureError := session.Capture(executionContext, operation.commands.drush(evalArgumentConstant, vocabularyProbeCodeConstant))
	if captureError != nil {
		return "", captureError
	}
	return strings.TrimSpace(output), nil
}

type generateUsersOperation struct {
	commands commandFactory
	versions versionResolver
}

func (operation generateUsersOperation) Name() string {
	return generateUsersNameConstant
}

func (operation generateUsersOperation) Description() string {
	return generateUsersDescriptionConstant
}

func (operation generateUsersOperation) Options() []orchestrator.OptionDefinition {
	return nil
}

func (operation generateUsersOperation) Plan(executionContext context.Context, session *orchestrator.Session, _ orchestrator.Options) (orchestrator.StepList, error) {
	if versionError := operation.versions.requireMajor(executionContext, session, generateUsersRequiredMajorConstant); versionError != nil {
		return orchestrator.StepList{}, versionError
	}

	roleOutput, roleError := session.Capture(executionContext, operation.commands.drush(roleListArgumentConstant, jsonFormatArgumentConstant))
	if roleError != nil {
		return orchestrator.StepList{}, orchestrator.Skip(roleListFailedReasonTemplate, roleError)
	}
	roles, parseError := ParseRoleList(roleOutput)
	if parseError != nil {
		return orchestrator.StepList{}, parseError
	}
	if len(roles) == 0 {
		return orchestrator.StepList{}, orchestrator.Skip(noRolesReasonConstant)
	}

	builder := orchestrator.StepListBuilder{}
	for _, role := range roles {
		if role == anonymousRoleConstant {
			continue
		}
		if !roleIdentifierPattern.MatchString(role) {
			session.Notice(unsupportedRoleNoticeTemplate, role)
			continue
		}

		existingOutput, existingError := session.Capture(executionContext, operation.commands.drush(sqlQueryArgumentConstant, fmt.Sprintf(existingUserQueryTemplate, role)))
		if existingError != nil {
			return orchestrator.StepList{}, existingError
		}
		if len(strings.TrimSpace(existingOutput)) > 0 {
			session.Notice(userExistsNoticeTemplate, role)
			continue
		}

		builder.Add(orchestrator.CommandStep("create user "+role, operation.commands.drush(
			userCreateArgumentConstant,
			role,
			fmt.Sprintf(userMailArgumentTemplate, role),
			fmt.Sprintf(userPasswordArgumentTemplate, role),
		)))
		if role != authenticatedRoleConstant {
			builder.Add(orchestrator.CommandStep("grant role "+role, operation.commands.drush(userRoleAddArgumentConstant, role, role)))
		}
	}
	return builder.Build(), nil
}
