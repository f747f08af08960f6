package permissions

/************************************************
/**** MARK: ROLES ****/
/************************************************/
const ROLE_SUPER_ADMIN = "super_admin"
const ROLE_ADMIN = "admin"
const ROLE_MANAGER = "manager"
const ROLE_USER = "user"

/************************************************
/**** MARK: SETORES ****/
/************************************************/
const SECTOR_SUPORTE = "suporte"
const SECTOR_TECNICO = "tecnico"
const SECTOR_NOC = "noc"
const SECTOR_COMERCIAL = "comercial"
const SECTOR_ADM = "adm"

// Ordem fixa de prioridade: quando o usuário tem mais de um token de
// setor, vale o primeiro desta lista.
var Sectors = []string{
	SECTOR_SUPORTE,
	SECTOR_TECNICO,
	SECTOR_NOC,
	SECTOR_COMERCIAL,
	SECTOR_ADM,
}

/************************************************
/**** MARK: TOKENS DE PERMISSAO ****/
/************************************************/
const PERMISSION_CREATE_USER = "create_user"
const PERMISSION_READ_USER = "read_user"
const PERMISSION_UPDATE_USER = "update_user"
const PERMISSION_DELETE_USER = "delete_user"

const PERMISSION_CREATE_CONTENT = "create_content"
const PERMISSION_READ_CONTENT = "read_content"
const PERMISSION_UPDATE_CONTENT = "update_content"
const PERMISSION_DELETE_CONTENT = "delete_content"

// PERMISSION_ALL libera tudo (sentinela do super_admin).
const PERMISSION_ALL = "all"

// PERMISSION_MANAGER marca o usuário como manager na derivação de role.
const PERMISSION_MANAGER = "manager"

// AllPermissions lista todos os tokens reconhecidos pelo sistema.
var AllPermissions = []string{
	PERMISSION_CREATE_USER,
	PERMISSION_READ_USER,
	PERMISSION_UPDATE_USER,
	PERMISSION_DELETE_USER,

	PERMISSION_CREATE_CONTENT,
	PERMISSION_READ_CONTENT,
	PERMISSION_UPDATE_CONTENT,
	PERMISSION_DELETE_CONTENT,

	SECTOR_SUPORTE,
	SECTOR_TECNICO,
	SECTOR_NOC,
	SECTOR_COMERCIAL,
	SECTOR_ADM,

	PERMISSION_ALL,
}

// rolePermissions mapeia cada role para os tokens implícitos dela.
var rolePermissions = map[string][]string{
	ROLE_SUPER_ADMIN: append([]string{PERMISSION_ALL}, AllPermissions...),
	ROLE_ADMIN: {
		PERMISSION_CREATE_CONTENT,
		PERMISSION_READ_CONTENT,
		PERMISSION_UPDATE_CONTENT,
		PERMISSION_DELETE_CONTENT,
		PERMISSION_READ_USER,
	},
	ROLE_MANAGER: {
		PERMISSION_CREATE_CONTENT,
		PERMISSION_READ_CONTENT,
		PERMISSION_UPDATE_CONTENT,
	},
	ROLE_USER: {
		PERMISSION_READ_CONTENT,
	},
}

// ResolveRole deriva a role do usuário a partir do flag master e dos
// tokens de permissão. Nunca é persistida: recalculada a cada request.
func ResolveRole(isMaster bool, perms []string) string {
	if isMaster && contains(perms, PERMISSION_ALL) {
		return ROLE_SUPER_ADMIN
	}
	if isMaster {
		return ROLE_ADMIN
	}
	if contains(perms, PERMISSION_MANAGER) {
		return ROLE_MANAGER
	}
	return ROLE_USER
}

// ResolveSector devolve o setor do usuário (primeiro da ordem fixa
// presente nos tokens) ou "" quando não há nenhum.
func ResolveSector(perms []string) string {
	for _, s := range Sectors {
		if contains(perms, s) {
			return s
		}
	}
	return ""
}

// HasPermission decide se a role/tokens autorizam a permissão pedida.
func HasPermission(role string, perms []string, required string) bool {
	if role == ROLE_SUPER_ADMIN || contains(perms, PERMISSION_ALL) {
		return true
	}
	if contains(perms, required) {
		return true
	}
	if contains(rolePermissions[role], required) {
		return true
	}
	return false
}

// HasSectorAccess decide acesso a uma operação restrita por setor.
// requestedSector vazio significa operação sem restrição de setor.
func HasSectorAccess(role string, perms []string, userSector, requestedSector string) bool {
	if role == ROLE_SUPER_ADMIN || contains(perms, PERMISSION_ALL) {
		return true
	}
	if requestedSector == "" {
		return true
	}
	if requestedSector == userSector {
		return true
	}
	// usuário com mais de um token de setor mantém acesso aos demais
	if contains(perms, requestedSector) {
		return true
	}
	return false
}

// Grantable devolve os tokens que a role pode conceder a outros usuários.
func Grantable(role string) []string {
	switch role {
	case ROLE_SUPER_ADMIN:
		out := make([]string, len(AllPermissions))
		copy(out, AllPermissions)
		return out
	case ROLE_ADMIN:
		return []string{
			PERMISSION_READ_CONTENT,
			PERMISSION_CREATE_CONTENT,
			PERMISSION_UPDATE_CONTENT,
		}
	}
	return []string{}
}

// CanGrant verifica se todos os tokens pedidos cabem no que a role
// pode conceder.
func CanGrant(role string, requested []string) bool {
	allowed := Grantable(role)
	for _, p := range requested {
		if !contains(allowed, p) {
			return false
		}
	}
	return true
}

func IsValidSector(s string) bool {
	return contains(Sectors, s)
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
